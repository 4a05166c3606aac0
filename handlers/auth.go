package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"clutchjobs/models"
)

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	FullName    string `json:"full_name"`
	AccountType string `json:"account_type"`
	CompanyName string `json:"company_name"`
	Website     string `json:"website"`
	Industry    string `json:"industry"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginRequest struct {
	Token       string `json:"token" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	AccountType string `json:"account_type"`
}

type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    string `json:"user,omitempty"`
	Token   string `json:"token,omitempty"`
}

type Claims struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	AccountType string `json:"account_type"`
	jwt.RegisteredClaims
}

// GenerateJWT creates a JWT token for the profile
func GenerateJWT(userID, email, accountType string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "your-secret-key"
	}

	expirationHours, _ := strconv.Atoi(os.Getenv("JWT_EXPIRATION_HOURS"))
	if expirationHours == 0 {
		expirationHours = 24
	}

	claims := Claims{
		UserID:      userID,
		Email:       email,
		AccountType: accountType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateJWT validates and extracts profile information from a JWT token
func ValidateJWT(tokenString string) (*Claims, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "your-secret-key"
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}

// AuthMiddleware validates the bearer token and sets user context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, AuthResponse{
				Success: false,
				Message: "Authorization header required",
			})
			c.Abort()
			return
		}

		// Remove "Bearer " prefix if present
		if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
			tokenString = tokenString[7:]
		}

		claims, err := ValidateJWT(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, AuthResponse{
				Success: false,
				Message: "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("account_type", claims.AccountType)
		c.Next()
	}
}

// OptionalUserID extracts the caller's identity from a bearer token when
// one is present. Public endpoints use it to link activity to a profile
// without requiring login; a missing or invalid token yields "".
func OptionalUserID(c *gin.Context) string {
	tokenString := c.GetHeader("Authorization")
	if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
		tokenString = tokenString[7:]
	}
	if tokenString == "" {
		return ""
	}
	claims, err := ValidateJWT(tokenString)
	if err != nil {
		return ""
	}
	return claims.UserID
}

// EmployerOnly rejects requests from non-employer accounts. It must run
// after AuthMiddleware.
func EmployerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("account_type") != models.AccountTypeEmployer {
			c.JSON(http.StatusForbidden, AuthResponse{
				Success: false,
				Message: "Employer account required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func RegisterUser(db *sql.DB) gin.HandlerFunc {
	profiles := models.NewProfileModel(db)
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, AuthResponse{
				Success: false,
				Message: "Invalid request data: " + err.Error(),
			})
			return
		}

		accountType := req.AccountType
		if accountType == "" {
			accountType = models.AccountTypeCandidate
		}
		if accountType != models.AccountTypeCandidate && accountType != models.AccountTypeEmployer {
			c.JSON(http.StatusBadRequest, AuthResponse{
				Success: false,
				Message: "Invalid account type",
			})
			return
		}

		// Check if a profile already exists
		if _, err := profiles.GetByEmail(req.Email); err == nil {
			c.JSON(http.StatusConflict, AuthResponse{
				Success: false,
				Message: "User with this email already exists",
			})
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{
				Success: false,
				Message: "Failed to hash password",
			})
			return
		}

		profile, err := profiles.CreateWithCompany(req.Email, req.FullName, string(hashedPassword),
			accountType, "email", req.CompanyName, req.Website, req.Industry)
		if err != nil {
			log.Printf("Database error during profile creation: %v", err)
			c.JSON(http.StatusInternalServerError, AuthResponse{
				Success: false,
				Message: "Failed to create account: " + err.Error(),
			})
			return
		}

		token, err := GenerateJWT(profile.ID, profile.Email, profile.AccountType)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{
				Success: false,
				Message: "Failed to generate authentication token",
			})
			return
		}

		c.JSON(http.StatusOK, AuthResponse{
			Success: true,
			Message: "User registered successfully",
			User:    profile.Email,
			Token:   token,
		})
	}
}

func LoginUser(db *sql.DB) gin.HandlerFunc {
	profiles := models.NewProfileModel(db)
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, AuthResponse{
				Success: false,
				Message: "Invalid request data: " + err.Error(),
			})
			return
		}

		profile, err := profiles.GetByEmail(req.Email)
		if err != nil {
			c.JSON(http.StatusUnauthorized, AuthResponse{
				Success: false,
				Message: "Invalid email or password",
			})
			return
		}

		err = bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(req.Password))
		if err != nil {
			c.JSON(http.StatusUnauthorized, AuthResponse{
				Success: false,
				Message: "Invalid email or password",
			})
			return
		}

		token, err := GenerateJWT(profile.ID, profile.Email, profile.AccountType)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{
				Success: false,
				Message: "Failed to generate authentication token",
			})
			return
		}

		c.JSON(http.StatusOK, AuthResponse{
			Success: true,
			Message: "Login successful",
			User:    profile.Email,
			Token:   token,
		})
	}
}

// GoogleLogin handles Google OAuth login
func GoogleLogin(db *sql.DB) gin.HandlerFunc {
	profiles := models.NewProfileModel(db)
	return func(c *gin.Context) {
		var req GoogleLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, AuthResponse{
				Success: false,
				Message: "Invalid request data: " + err.Error(),
			})
			return
		}

		// For now, we'll just create or get the profile based on email.
		// In production you'd verify the Google token.
		profile, err := profiles.GetByEmail(req.Email)
		if err != nil {
			accountType := req.AccountType
			if accountType != models.AccountTypeEmployer {
				accountType = models.AccountTypeCandidate
			}
			profile, err = profiles.CreateWithCompany(req.Email, req.Email, "google_oauth_user",
				accountType, "google", "", "", "")
			if err != nil {
				c.JSON(http.StatusInternalServerError, AuthResponse{
					Success: false,
					Message: "Failed to create account",
				})
				return
			}
		}

		token, err := GenerateJWT(profile.ID, profile.Email, profile.AccountType)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{
				Success: false,
				Message: "Failed to generate authentication token",
			})
			return
		}

		c.JSON(http.StatusOK, AuthResponse{
			Success: true,
			Message: "Google login successful",
			User:    profile.Email,
			Token:   token,
		})
	}
}

// GetProfile returns the current user's profile
func GetProfile(db *sql.DB) gin.HandlerFunc {
	profiles := models.NewProfileModel(db)
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, AuthResponse{
				Success: false,
				Message: "User not authenticated",
			})
			return
		}

		profile, err := profiles.GetByID(userID)
		if err != nil {
			c.JSON(http.StatusNotFound, AuthResponse{
				Success: false,
				Message: "Profile not found",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"profile": profile,
		})
	}
}

// UpdateProfile updates the current user's profile information
func UpdateProfile(db *sql.DB) gin.HandlerFunc {
	profiles := models.NewProfileModel(db)
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, AuthResponse{
				Success: false,
				Message: "User not authenticated",
			})
			return
		}

		var req struct {
			FullName    string `json:"full_name" binding:"required"`
			AvatarURL   string `json:"avatar_url"`
			CompanyName string `json:"company_name"`
			Website     string `json:"website"`
			Industry    string `json:"industry"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, AuthResponse{
				Success: false,
				Message: "Invalid request data: " + err.Error(),
			})
			return
		}

		err := profiles.Update(userID, req.FullName, req.AvatarURL, req.CompanyName, req.Website, req.Industry)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{
				Success: false,
				Message: "Failed to update profile",
			})
			return
		}

		c.JSON(http.StatusOK, AuthResponse{
			Success: true,
			Message: "Profile updated successfully",
		})
	}
}

// ChangePassword allows users to change their password
func ChangePassword(db *sql.DB) gin.HandlerFunc {
	profiles := models.NewProfileModel(db)
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, AuthResponse{
				Success: false,
				Message: "User not authenticated",
			})
			return
		}

		var req struct {
			CurrentPassword string `json:"current_password" binding:"required"`
			NewPassword     string `json:"new_password" binding:"required,min=6"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, AuthResponse{
				Success: false,
				Message: "Invalid request data: " + err.Error(),
			})
			return
		}

		profile, err := profiles.GetByID(userID)
		if err != nil {
			c.JSON(http.StatusNotFound, AuthResponse{
				Success: false,
				Message: "Profile not found",
			})
			return
		}

		err = bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(req.CurrentPassword))
		if err != nil {
			c.JSON(http.StatusUnauthorized, AuthResponse{
				Success: false,
				Message: "Current password is incorrect",
			})
			return
		}

		newHashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{
				Success: false,
				Message: "Failed to hash password",
			})
			return
		}

		if err := profiles.UpdatePassword(userID, string(newHashedPassword)); err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{
				Success: false,
				Message: "Failed to update password",
			})
			return
		}

		c.JSON(http.StatusOK, AuthResponse{
			Success: true,
			Message: "Password changed successfully",
		})
	}
}

// LogoutUser handles user logout (client-side token removal)
func LogoutUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, AuthResponse{
			Success: true,
			Message: "Logged out successfully",
		})
	}
}
