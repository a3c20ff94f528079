package user

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/trademe-app/trademe-api/internal/models"
	"github.com/trademe-app/trademe-api/internal/storage"
	"github.com/trademe-app/trademe-api/internal/utils"
	"github.com/trademe-app/trademe-api/internal/verification"
)

// UserService представляет сервис для работы с профилями пользователей
type UserService struct {
	store        storage.Store
	verification *verification.Service
	jwtService   *utils.JWTService
	validate     *validator.Validate
}

// NewUserService создает новый экземпляр UserService
func NewUserService(store storage.Store, verificationService *verification.Service, jwtService *utils.JWTService) *UserService {
	return &UserService{
		store:        store,
		verification: verificationService,
		jwtService:   jwtService,
		validate:     validator.New(),
	}
}

// updateProfileRequest – изменяемые поля профиля. Nil-поля не трогаются
type updateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=32,alphanumunicode"`
	FullName *string `json:"full_name" validate:"omitempty,max=100"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
	ZipCode  *string `json:"zip_code" validate:"omitempty,len=5,numeric"`
	City     *string `json:"city" validate:"omitempty,max=100"`
	State    *string `json:"state" validate:"omitempty,len=2,alpha"`
}

// UpdateProfile обновляет профиль текущего пользователя
func (s *UserService) UpdateProfile(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req updateProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := s.store.GetUser(c.Context(), userID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.ZipCode != nil {
		user.ZipCode = *req.ZipCode
	}
	if req.City != nil {
		user.City = *req.City
	}
	if req.State != nil {
		user.State = *req.State
	}

	if err := s.store.UpdateUser(c.Context(), user); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(user)
}

// GetProfile возвращает публичный профиль пользователя
func (s *UserService) GetProfile(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	user, err := s.store.GetUser(c.Context(), id)
	if err != nil {
		return utils.RespondError(c, err)
	}

	return c.JSON(models.UserProfile{
		ID:        user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
	})
}

// SendPhoneCode отправляет код подтверждения на номер телефона
func (s *UserService) SendPhoneCode(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req struct {
		PhoneNumber string `json:"phone_number" validate:"required,e164"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Phone number must be in E.164 format"})
	}

	if err := s.verification.SendCode(c.Context(), userID, req.PhoneNumber); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "code_sent"})
}

// VerifyPhoneCode проверяет код и помечает телефон подтвержденным
func (s *UserService) VerifyPhoneCode(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req struct {
		PhoneNumber string `json:"phone_number" validate:"required,e164"`
		Code        string `json:"code" validate:"required,len=6,numeric"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := s.verification.VerifyCode(c.Context(), userID, req.PhoneNumber, req.Code); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "phone_verified"})
}
