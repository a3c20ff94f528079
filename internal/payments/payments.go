// Package payments оборачивает API платежного провайдера для управления
// подписками Trade Me Premium.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/trademe-app/trademe-api/internal/config"
)

// Provider описывает операции платежного провайдера
type Provider interface {
	CreateSubscription(ctx context.Context, req SubscriptionRequest) (*SubscriptionResult, error)
	CancelSubscription(ctx context.Context, providerSubscriptionID string) error
}

// SubscriptionRequest содержит данные для оформления подписки
type SubscriptionRequest struct {
	CustomerEmail string `json:"customer_email"`
	Amount        int64  `json:"amount"` // В центах
	Currency      string `json:"currency"`
}

// SubscriptionResult содержит ответ провайдера
type SubscriptionResult struct {
	SubscriptionID string `json:"subscription_id"`
	CustomerID     string `json:"customer_id"`
	Status         string `json:"status"`
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client выполняет запросы к API провайдера
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// NewClient создает клиент платежного провайдера
func NewClient(cfg config.PaymentConfig) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка сериализации запроса: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка запроса к платежному провайдеру: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("ошибка разбора ответа провайдера: %w", err)
	}
	if resp.StatusCode >= 400 || !envelope.Status {
		return fmt.Errorf("платежный провайдер вернул ошибку: %s", envelope.Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("ошибка разбора данных ответа: %w", err)
		}
	}
	return nil
}

// CreateSubscription оформляет подписку у провайдера
func (c *Client) CreateSubscription(ctx context.Context, req SubscriptionRequest) (*SubscriptionResult, error) {
	var result SubscriptionResult
	if err := c.do(ctx, http.MethodPost, "/subscriptions", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelSubscription отменяет подписку у провайдера
func (c *Client) CancelSubscription(ctx context.Context, providerSubscriptionID string) error {
	return c.do(ctx, http.MethodPost, "/subscriptions/"+providerSubscriptionID+"/cancel", nil, nil)
}

// Sandbox эмулирует провайдера без внешних вызовов. Используется в development
// и в тестах.
type Sandbox struct{}

func (Sandbox) CreateSubscription(_ context.Context, _ SubscriptionRequest) (*SubscriptionResult, error) {
	return &SubscriptionResult{
		SubscriptionID: "sandbox_sub_" + uuid.New().String(),
		CustomerID:     "sandbox_cus_" + uuid.New().String(),
		Status:         "active",
	}, nil
}

func (Sandbox) CancelSubscription(_ context.Context, _ string) error {
	return nil
}

// NewProvider выбирает реализацию по конфигурации
func NewProvider(cfg config.PaymentConfig) Provider {
	if cfg.Sandbox {
		return Sandbox{}
	}
	return NewClient(cfg)
}
