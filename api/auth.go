package api

import (
	"errors"
	"log"
	"strings"
	"time"
	"unicode"

	"moneybook/config"
	"moneybook/middleware"
	"moneybook/models"
	"moneybook/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	db           *gorm.DB
	cfg          *config.Config
	emailService *service.EmailService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		db:           db,
		cfg:          cfg,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" example:"testuser"`
	Email    string `json:"email" binding:"required,email" example:"test@example.com"`
	Password string `json:"password" binding:"required" example:"Passw0rd!"`
}

// LoginRequest 登录请求（支持用户名或邮箱）
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"testuser"` // 可为用户名或邮箱
	Password string `json:"password" binding:"required" example:"Passw0rd!"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token    string      `json:"token"`
	UserInfo models.User `json:"user_info"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// validatePasswordStrength 密码强度校验
// 至少 8 位，且同时包含大写字母、小写字母、数字和特殊字符
func validatePasswordStrength(password string) string {
	if len(password) < 8 {
		return "密码长度至少为8位"
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return "密码必须同时包含大写字母、小写字母、数字和特殊字符"
	}
	return ""
}

// Register 用户注册
// @Summary 用户注册
// @Description 创建新用户账号，并自动初始化默认的支出/收入类别
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 200 {object} Response{data=LoginResponse} "注册成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 409 {object} Response "用户名或邮箱已被注册"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if msg := validatePasswordStrength(req.Password); msg != "" {
		BadRequest(c, msg)
		return
	}

	// 检查用户名/邮箱是否已被占用
	var existing models.User
	if err := h.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		Conflict(c, "用户名已存在")
		return
	}
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		Conflict(c, "邮箱已被注册")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "密码加密失败")
		return
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}

	// 创建用户与默认类别放在同一事务，保证新用户总是带有可用类别
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return service.CreateDefaultCategories(tx, user.ID)
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "创建用户失败"))
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "生成 token 失败")
		return
	}

	SuccessWithMessage(c, "注册成功", LoginResponse{Token: token, UserInfo: user})
}

// Login 用户登录
// @Summary 用户登录
// @Description 用户登录获取 JWT token，支持用户名或邮箱
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} Response{data=LoginResponse} "登录成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "用户名或密码错误"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 查找用户（支持用户名或邮箱）
	var user models.User
	if err := h.db.Where("username = ? OR email = ?", req.Username, req.Username).
		First(&user).Error; err != nil {
		Unauthorized(c, "用户名或密码错误")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		Unauthorized(c, "用户名或密码错误")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "生成 token 失败")
		return
	}

	Success(c, LoginResponse{Token: token, UserInfo: user})
}

// Profile 获取当前用户信息
// @Summary 获取当前用户信息
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/auth/profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		Unauthorized(c, "用户不存在")
		return
	}
	Success(c, user)
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Description 校验旧密码后设置新密码，新密码需满足强度要求
// @Tags 认证
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "新旧密码"
// @Success 200 {object} Response "修改成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "旧密码错误"
// @Router /api/v1/auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if msg := validatePasswordStrength(req.NewPassword); msg != "" {
		BadRequest(c, msg)
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		Unauthorized(c, "用户不存在")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		Unauthorized(c, "旧密码错误")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "密码加密失败")
		return
	}

	if err := h.db.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "修改密码失败"))
		return
	}

	SuccessWithMessage(c, "密码修改成功", nil)
}

// ForgotPasswordRequest 忘记密码请求
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email" example:"test@example.com"`
}

// VerifyResetCodeRequest 校验验证码请求
type VerifyResetCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required"`
}

// 验证码有效期与重发间隔
const (
	resetCodeTTL      = 10 * time.Minute
	resetResendWindow = time.Minute
)

// ForgotPassword 请求密码重置验证码
// @Summary 请求密码重置验证码
// @Description 向注册邮箱发送6位验证码。无论邮箱是否存在都返回成功，避免探测注册邮箱
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "注册邮箱"
// @Success 200 {object} Response "发送成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 429 {object} Response "请求过于频繁"
// @Router /api/v1/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	const sentMessage = "如果该邮箱已注册，验证码已发送，请查收"

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// 邮箱不存在也返回成功
		SuccessWithMessage(c, sentMessage, nil)
		return
	}

	// 一分钟内只允许发送一次
	var recent models.PasswordReset
	err := h.db.Where("user_id = ? AND created_at > ?", user.ID, time.Now().Add(-resetResendWindow)).
		First(&recent).Error
	if err == nil {
		Error(c, 429, "验证码发送过于频繁，请稍后再试")
		return
	}

	code, err := models.GenerateVerificationCode()
	if err != nil {
		InternalError(c, "生成验证码失败")
		return
	}

	reset := models.PasswordReset{
		UserID:    user.ID,
		Email:     user.Email,
		Code:      code,
		ExpiresAt: time.Now().Add(resetCodeTTL),
	}
	if err := h.db.Create(&reset).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "发送验证码失败"))
		return
	}

	if h.emailService.Enabled() {
		if err := h.emailService.SendPasswordResetEmail(user.Email, user.Username, code); err != nil {
			log.Printf("发送密码重置邮件失败 (user=%d): %v", user.ID, err)
			InternalError(c, "发送验证码失败，请稍后再试")
			return
		}
	} else {
		// 未配置邮件服务时只记录日志，便于本地开发调试
		log.Printf("邮件服务未启用，密码重置验证码 (user=%d): %s", user.ID, code)
	}

	SuccessWithMessage(c, sentMessage, nil)
}

// findValidReset 查找未使用且未过期的验证码记录
func (h *AuthHandler) findValidReset(email, code string) (*models.PasswordReset, *models.User, error) {
	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, nil, err
	}

	var reset models.PasswordReset
	err := h.db.Where("user_id = ? AND code = ? AND used = ?", user.ID, code, false).
		Order("created_at DESC").First(&reset).Error
	if err != nil {
		return nil, nil, err
	}
	if reset.IsExpired() {
		return nil, nil, errors.New("验证码已过期")
	}
	return &reset, &user, nil
}

// VerifyResetCode 校验重置验证码
// @Summary 校验重置验证码
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body VerifyResetCodeRequest true "邮箱与验证码"
// @Success 200 {object} Response "验证码有效"
// @Failure 400 {object} Response "验证码错误或已过期"
// @Router /api/v1/auth/verify-reset-code [post]
func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var req VerifyResetCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if _, _, err := h.findValidReset(req.Email, req.Code); err != nil {
		BadRequest(c, "验证码错误或已过期")
		return
	}
	SuccessWithMessage(c, "验证码有效", nil)
}

// ResetPassword 通过验证码重置密码
// @Summary 通过验证码重置密码
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "邮箱、验证码与新密码"
// @Success 200 {object} Response "重置成功"
// @Failure 400 {object} Response "验证码错误或已过期"
// @Router /api/v1/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if msg := validatePasswordStrength(req.NewPassword); msg != "" {
		BadRequest(c, msg)
		return
	}

	reset, user, err := h.findValidReset(req.Email, req.Code)
	if err != nil {
		BadRequest(c, "验证码错误或已过期")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "密码加密失败")
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("password", string(hashedPassword)).Error; err != nil {
			return err
		}
		return tx.Model(reset).Update("used", true).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "重置密码失败"))
		return
	}

	SuccessWithMessage(c, "密码重置成功，请使用新密码登录", nil)
}
