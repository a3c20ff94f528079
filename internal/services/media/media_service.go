package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/trademe-app/trademe-api/internal/config"
)

// MediaService предоставляет методы для работы с Cloudinary
type MediaService struct {
	cfg          *config.Config
	cld          *cloudinary.Cloudinary
	uploadFolder string
}

// NewMediaService создает новый экземпляр MediaService
func NewMediaService(cfg *config.Config) (*MediaService, error) {
	cc := cfg.CloudinaryConfig
	cld, err := cloudinary.NewFromParams(cc.CloudName, cc.APIKey, cc.APISecret)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Cloudinary: %w", err)
	}

	return &MediaService{
		cfg:          cfg,
		cld:          cld,
		uploadFolder: cc.UploadFolder,
	}, nil
}

// GenerateSignature создаёт корректную подпись для Cloudinary
func (s *MediaService) GenerateSignature(params map[string]string) string {
	// Сортируем ключи параметров
	var keys []string
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Формируем строку для подписи
	var signParts []string
	for _, k := range keys {
		signParts = append(signParts, fmt.Sprintf("%s=%s", k, params[k]))
	}
	signatureString := strings.Join(signParts, "&")

	// Добавляем API-секрет в конец строки
	signatureString += s.cfg.CloudinaryConfig.APISecret

	// Создаем SHA-1 хеш
	h := sha1.New()
	h.Write([]byte(signatureString))

	// Возвращаем подпись в виде шестнадцатеричной строки
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateUploadParams создаёт параметры для прямой загрузки фотографий
// предмета из клиента
func (s *MediaService) GenerateUploadParams(c fiber.Ctx) error {
	// Генерируем ID для предмета, если не передан
	itemID := c.Query("item_id")
	if itemID == "" {
		itemID = uuid.New().String()
	}

	// Текущий timestamp
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	// Параметры для подписи
	params := map[string]string{
		"timestamp": timestamp,
		"folder":    s.uploadFolder,
	}

	// Генерируем подпись
	signature := s.GenerateSignature(params)

	// Возвращаем параметры
	return c.JSON(fiber.Map{
		"timestamp":  timestamp,
		"signature":  signature,
		"folder":     s.uploadFolder,
		"api_key":    s.cfg.CloudinaryConfig.APIKey,
		"cloud_name": s.cfg.CloudinaryConfig.CloudName,
		"item_id":    itemID,
	})
}

// Destroy удаляет загруженный файл из Cloudinary
func (s *MediaService) Destroy(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("ошибка удаления файла из Cloudinary: %w", err)
	}
	return nil
}
