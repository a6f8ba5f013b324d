package user

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"smartshop_back_end/internal/cache"
	"smartshop_back_end/internal/models"
	"smartshop_back_end/internal/store"
	"smartshop_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
)

var userStore store.UserStore

func InitAuth(us store.UserStore) {
	userStore = us
}

// ================== AUTH LOCALE ==================

func Register(c *gin.Context) {
	var input struct {
		Username  string `json:"username" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=8"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	newUser := models.User{
		Username:  input.Username,
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Password:  hashed,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      "user",
		Provider:  "local",
	}

	if err := userStore.Insert(ctx, &newUser); err != nil {
		if err == store.ErrDuplicateEmail {
			c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
			return
		}
		log.Printf("❌ Erreur inscription: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	token, _ := utils.GenerateJWT(newUser)
	log.Printf("✅ Utilisateur créé: %s", newUser.Email)

	c.JSON(http.StatusCreated, gin.H{
		"token":    token,
		"userId":   newUser.ID.Hex(),
		"username": newUser.Username,
		"email":    newUser.Email,
		"role":     newUser.Role,
	})
}

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	u, err := userStore.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		// même message que mot de passe incorrect, pas d'énumération d'emails
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, u.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	token, err := utils.GenerateJWT(*u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"userId":   u.ID.Hex(),
		"username": u.Username,
		"email":    u.Email,
		"role":     u.Role,
	})
}

func Me(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	u, err := cache.GetUserFromCache(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":     u.ID.Hex(),
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"role":       u.Role,
		"provider":   u.Provider,
	})
}

// ================== MOT DE PASSE OUBLIÉ ==================

func ForgotPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(input.Email))

	// réponse identique que l'email existe ou non
	successMsg := gin.H{"message": "Si un compte existe, un code a été envoyé par email"}

	if _, err := userStore.FindByEmail(ctx, email); err != nil {
		c.JSON(http.StatusOK, successMsg)
		return
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération code"})
		return
	}

	if err := userStore.SavePasswordResetOTP(ctx, email, otp, time.Now().Add(10*time.Minute)); err != nil {
		log.Printf("❌ Erreur enregistrement OTP: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	go func() {
		if err := utils.SendOTPEmail(email, otp); err != nil {
			log.Printf("📤 Échec envoi email OTP à %s: %v", email, err)
		}
	}()

	log.Printf("📤 Code de réinitialisation envoyé à %s", email)
	c.JSON(http.StatusOK, successMsg)
}

func ResetPassword(c *gin.Context) {
	var input struct {
		Email       string `json:"email" binding:"required,email"`
		OTP         string `json:"otp" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(input.Email))

	u, err := userStore.FindByValidOTP(ctx, email, input.OTP)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Code invalide ou expiré"})
		return
	}

	hashed, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	if err := userStore.ResetPasswordAndClearOTP(ctx, u.ID, hashed); err != nil {
		log.Printf("❌ Erreur réinitialisation mot de passe: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	cache.InvalidateUserCache(u.ID.Hex())
	log.Printf("✅ Mot de passe réinitialisé pour %s", email)
	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe réinitialisé avec succès"})
}

// ================== AUTH SOCIALE ==================

func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider != "google" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provider non supporté"})
		return
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		log.Printf("❌ Erreur OAuth %s: %v", provider, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentification échouée"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	email := strings.ToLower(gothUser.Email)
	u, err := userStore.FindByEmail(ctx, email)
	if err == store.ErrUserNotFound {
		u = &models.User{
			Username: gothUser.NickName,
			Email:    email,
			Role:     "user",
			Provider: provider,
		}
		if u.Username == "" {
			u.Username = gothUser.Name
		}
		if err := userStore.Insert(ctx, u); err != nil {
			log.Printf("❌ Erreur création utilisateur OAuth: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
			return
		}
		log.Printf("🆕 Utilisateur OAuth créé (%s): %s", provider, email)
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	} else {
		log.Printf("✅ Utilisateur OAuth existant: %s", email)
	}

	token, _ := utils.GenerateJWT(*u)

	redirectURI := os.Getenv("FRONTEND_URL")
	if redirectURI == "" {
		redirectURI = "http://localhost:5173"
	}
	sep := "?"
	if strings.Contains(redirectURI, "?") {
		sep = "&"
	}
	c.Redirect(http.StatusTemporaryRedirect, redirectURI+"/auth/callback"+sep+"token="+url.QueryEscape(token))
}
