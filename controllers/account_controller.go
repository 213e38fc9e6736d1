package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campuslink/campuslink/middleware"
	"github.com/campuslink/campuslink/models"
	"github.com/campuslink/campuslink/utils"
	"github.com/campuslink/campuslink/views"
)

const (
	signupCodeLength   = 8
	signupCodeCooldown = time.Minute
	tokenDuration      = 72 * time.Hour
)

// AccountController handles registration, login and session lifecycle.
type AccountController struct {
	db *gorm.DB
}

func NewAccountController(db *gorm.DB) *AccountController {
	return &AccountController{db: db}
}

type requestCodeInput struct {
	Email string `json:"email" binding:"required"`
}

// RequestSignupCode emails a verification code to an address whose domain is
// on the whitelist. Calling it again deactivates any earlier codes, so only
// the latest one can be verified.
func (a *AccountController) RequestSignupCode(ctx *gin.Context) {
	var in requestCodeInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "email is required")
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	domain, ok := models.SplitEmailDomain(email)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid email address")
		return
	}

	var allowed models.EmailDomain
	err := a.db.Where("domain = ?", domain).First(&allowed).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusForbidden, 40310, "email domain is not supported")
		return
	}
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	var count int64
	if err := a.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		respondStoreError(ctx, err)
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, 40910, "email is already registered")
		return
	}

	if !utils.EmailCooldownTrySet(email, signupCodeCooldown) {
		utils.Error(ctx, http.StatusTooManyRequests, 42910, "a code was sent recently, try again later")
		return
	}

	code := utils.GenerateSignupCode(signupCodeLength)
	err = a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SignUpCode{}).
			Where("email = ? AND active = ?", email, true).
			Update("active", false).Error; err != nil {
			return err
		}
		return tx.Create(&models.SignUpCode{Email: email, Code: code, Active: true}).Error
	})
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	body := fmt.Sprintf("Your verification code is: %s\n\nEnter it to finish creating your account.", code)
	if err := utils.SendMail(email, "Your verification code", body); err != nil {
		utils.Sugar.Errorf("send signup code to %s: %v", email, err)
		utils.Error(ctx, http.StatusInternalServerError, 50010, "could not send the verification email")
		return
	}

	utils.Success(ctx, gin.H{"email": email})
}

type createAccountInput struct {
	Email     string `json:"email" binding:"required"`
	Code      string `json:"code" binding:"required"`
	Username  string `json:"username" binding:"required,min=3,max=64"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CreateAccount verifies the emailed code and creates the user. The new
// account is attached to the college owning the email domain, when one does.
func (a *AccountController) CreateAccount(ctx *gin.Context) {
	var in createAccountInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "email, code, username and password are required")
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var sc models.SignUpCode
	err := a.db.Where("email = ? AND code = ? AND active = ? AND verified = ?",
		email, in.Code, true, false).First(&sc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid or expired verification code")
		return
	}
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	var count int64
	if err := a.db.Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		respondStoreError(ctx, err)
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, 40911, "username is taken")
		return
	}
	if err := a.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		respondStoreError(ctx, err)
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, 40910, "email is already registered")
		return
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	user := models.User{
		Username:     in.Username,
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
	}
	if collegeID, ok := a.collegeForEmail(email); ok {
		user.CollegeID = &collegeID
	}

	err = a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&sc).Updates(map[string]interface{}{"verified": true, "active": false}).Error; err != nil {
			return err
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, tokenDuration)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{
		"token": token,
		"user":  views.NewUserView(&user, user.ID),
	})
}

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates by username and password and issues a JWT.
func (a *AccountController) Login(ctx *gin.Context) {
	var in loginInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40014, "username and password are required")
		return
	}

	var user models.User
	err := a.db.Where("username = ?", in.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !utils.CheckPassword(user.PasswordHash, in.Password)) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid username or password")
		return
	}
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, tokenDuration)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  views.NewUserView(&user, user.ID),
	})
}

// Logout revokes the presented token until it would have expired anyway.
func (a *AccountController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusBadRequest, 40015, "no token presented")
		return
	}
	tokenString := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40016, "invalid token")
		return
	}
	expiry := time.Now().Add(tokenDuration)
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(tokenString, expiry)
	utils.Success(ctx, nil)
}

// Me returns the authenticated user's own profile.
func (a *AccountController) Me(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required")
		return
	}
	var user models.User
	err := a.db.Preload("College").Preload("Picture").Preload("Designations").
		First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40401, "not found")
		return
	}
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Success(ctx, views.NewUserView(&user, userID))
}

func (a *AccountController) collegeForEmail(email string) (uint, bool) {
	domain, ok := models.SplitEmailDomain(email)
	if !ok {
		return 0, false
	}
	var college models.College
	err := a.db.
		Joins("JOIN college_email_domains ced ON ced.college_id = colleges.id").
		Joins("JOIN email_domains ed ON ed.id = ced.email_domain_id").
		Where("ed.domain = ?", domain).
		First(&college).Error
	if err != nil {
		return 0, false
	}
	return college.ID, true
}
