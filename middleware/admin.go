package middleware

import (
	"net/http"

	"moneybook/database"
	"moneybook/models"

	"github.com/gin-gonic/gin"
)

// AdminOnly 管理员校验中间件
// 需在 JWTAuth 之后使用，每次请求都从数据库确认 is_admin，
// 避免降权后的旧 token 继续访问管理接口
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetCurrentUserID(c)

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "用户不存在"})
			c.Abort()
			return
		}

		if !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"code": 403, "message": "权限不足"})
			c.Abort()
			return
		}

		c.Next()
	}
}
