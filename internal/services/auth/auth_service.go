package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/trademe-app/trademe-api/internal/config"
	"github.com/trademe-app/trademe-api/internal/guard"
	"github.com/trademe-app/trademe-api/internal/models"
	"github.com/trademe-app/trademe-api/internal/storage"
	"github.com/trademe-app/trademe-api/internal/utils"
)

const googleIssuer = "https://accounts.google.com"

// AuthService – структура для обработки авторизации
type AuthService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	store      storage.Store
	verifier   *oidc.IDTokenVerifier
}

// NewAuthService – конструктор AuthService. Подтягивает дискавери-документ
// Google для проверки подписи ID-токенов.
func NewAuthService(cfg *config.Config, store storage.Store) (*AuthService, error) {
	provider, err := oidc.NewProvider(context.Background(), googleIssuer)
	if err != nil {
		return nil, err
	}

	return &AuthService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		store:      store,
		verifier:   provider.Verifier(&oidc.Config{ClientID: cfg.GoogleClientID}),
	}, nil
}

// GetJWTService возвращает JWT-сервис для использования в middleware
func (s *AuthService) GetJWTService() *utils.JWTService {
	return s.jwtService
}

// googleClaims – интересующие нас поля ID-токена Google
type googleClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleAuthHandler проверяет ID-токен Google, создает или обновляет
// пользователя и возвращает JWT
func (s *AuthService) GoogleAuthHandler(c fiber.Ctx) error {
	var payload struct {
		IDToken string `json:"id_token"`
	}

	if err := c.Bind().Body(&payload); err != nil || payload.IDToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	idToken, err := s.verifier.Verify(c.Context(), payload.IDToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid Google token"})
	}

	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to parse token claims"})
	}
	if !claims.EmailVerified {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Google account email is not verified"})
	}

	user, err := s.upsertUser(c.Context(), claims)
	if err != nil {
		return utils.RespondError(c, err)
	}

	// Генерируем JWT
	jwtToken, err := s.jwtService.GenerateToken(user.ID.String())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate JWT"})
	}

	return c.JSON(fiber.Map{
		"token": jwtToken,
		"user":  user,
	})
}

// upsertUser находит пользователя по Google ID или регистрирует нового
func (s *AuthService) upsertUser(ctx context.Context, claims googleClaims) (*models.User, error) {
	user, err := s.store.GetUserByGoogleID(ctx, claims.Sub)
	if err == nil {
		if err := s.store.TouchLastLogin(ctx, user.ID); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, guard.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	user = &models.User{
		ID:        uuid.New(),
		Email:     claims.Email,
		Username:  usernameFromEmail(claims.Email),
		FullName:  claims.Name,
		AvatarURL: claims.Picture,
		GoogleID:  claims.Sub,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// usernameFromEmail строит username из локальной части email с суффиксом
// для уникальности
func usernameFromEmail(email string) string {
	local := email
	if i := strings.Index(email, "@"); i > 0 {
		local = email[:i]
	}
	return local + "_" + uuid.New().String()[:8]
}

// MeHandler возвращает профиль текущего пользователя
func (s *AuthService) MeHandler(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	user, err := s.store.GetUser(c.Context(), userID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(user)
}
