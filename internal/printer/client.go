// Package printer предоставляет клиент сервиса печати чеков и фоновую
// отправку чеков завершённых заказов.
package printer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ReceiptLine описывает одну строку чека. Денежные поля в рупиях.
type ReceiptLine struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

// Receipt описывает чек завершённого заказа.
type Receipt struct {
	OrderID      string        `json:"order_id"`
	BranchID     string        `json:"branch_id"`
	TableNumber  int           `json:"table_number"`
	Lines        []ReceiptLine `json:"lines"`
	Subtotal     float64       `json:"subtotal"`
	CGST         float64       `json:"cgst"`
	SGST         float64       `json:"sgst"`
	Total        float64       `json:"total"`
	TotalRounded int64         `json:"total_rounded"`
	CompletedAt  time.Time     `json:"completed_at"`
}

// Client инкапсулирует HTTP-взаимодействие с сервисом печати чеков.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт HTTP-клиент для обращения к сервису печати по указанному адресу.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// PrintReceipt отправляет чек на печать. Возвращает HTTP-статус ответа и
// задержку из Retry-After при статусе 429.
func (c *Client) PrintReceipt(ctx context.Context, receipt Receipt) (int, time.Duration, error) {
	if c == nil || c.baseURL == "" {
		return 0, 0, fmt.Errorf("printer client not configured")
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	body, err := json.Marshal(receipt)
	if err != nil {
		return 0, 0, fmt.Errorf("encode receipt: %w", err)
	}

	url := base + "/api/receipts"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := time.Duration(0)
		if v := resp.Header.Get("Retry-After"); v != "" {
			if seconds, parseErr := strconv.Atoi(v); parseErr == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return resp.StatusCode, retryAfter, nil
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return resp.StatusCode, 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return resp.StatusCode, 0, nil
}
