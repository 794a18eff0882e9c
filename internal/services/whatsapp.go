package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lintasbill/backend/internal/backup"
	"github.com/lintasbill/backend/internal/settings"
)

// WhatsAppService talks to a self-hosted WhatsApp gateway over HTTP. The
// gateway address and credentials come from settings; the messaging client
// itself lives outside this codebase.
type WhatsAppService struct {
	client   *http.Client
	settings *settings.Store
}

func NewWhatsAppService(store *settings.Store) *WhatsAppService {
	return &WhatsAppService{
		client:   &http.Client{Timeout: 30 * time.Second},
		settings: store,
	}
}

// GatewayConfig holds the gateway connection settings.
type GatewayConfig struct {
	BaseURL string
	APIKey  string
	GroupID string
}

// Config reads the gateway settings, failing when no gateway URL is set.
func (s *WhatsAppService) Config() (*GatewayConfig, error) {
	cfg := &GatewayConfig{
		BaseURL: strings.TrimRight(s.settings.GetString("whatsapp_gateway_url"), "/"),
		APIKey:  s.settings.GetString("whatsapp_api_key"),
		GroupID: s.settings.GetString("whatsapp_group_id"),
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("WhatsApp gateway not configured")
	}
	return cfg, nil
}

// Group is one WhatsApp group known to the gateway account.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListGroups fetches the groups the gateway account participates in.
func (s *WhatsAppService) ListGroups() ([]Group, error) {
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/groups?api_key=%s", cfg.BaseURL, url.QueryEscape(cfg.APIKey))
	resp, err := s.client.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("gateway error (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Success bool    `json:"success"`
		Message string  `json:"message"`
		Data    []Group `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %v", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("gateway error: %s", result.Message)
	}
	return result.Data, nil
}

// SendGroupMessage posts a text message to a group. An empty groupID falls
// back to the configured default group.
func (s *WhatsAppService) SendGroupMessage(groupID, message string) error {
	cfg, err := s.Config()
	if err != nil {
		return err
	}
	if groupID == "" {
		groupID = cfg.GroupID
	}
	if groupID == "" {
		return fmt.Errorf("no WhatsApp group configured")
	}

	form := url.Values{}
	form.Set("api_key", cfg.APIKey)
	form.Set("group_id", groupID)
	form.Set("message", message)

	req, err := http.NewRequest("POST", cfg.BaseURL+"/send/group", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("gateway error (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &result); err == nil && !result.Success {
		return fmt.Errorf("gateway error: %s", result.Message)
	}
	return nil
}

// TestConnection checks that the gateway is reachable and the key is valid.
func (s *WhatsAppService) TestConnection(cfg *GatewayConfig) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("gateway URL is required")
	}

	reqURL := fmt.Sprintf("%s/status?api_key=%s", strings.TrimRight(cfg.BaseURL, "/"), url.QueryEscape(cfg.APIKey))
	resp, err := s.client.Get(reqURL)
	if err != nil {
		return fmt.Errorf("connection failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("gateway error (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &result); err == nil && !result.Success {
		return fmt.Errorf("gateway error: %s", result.Message)
	}
	return nil
}

// NotifyBackupCreated posts a backup summary to the configured group in the
// background. Delivery failures only hit the log.
func (s *WhatsAppService) NotifyBackupCreated(result *backup.BackupResult) {
	if !s.notificationsConfigured() {
		return
	}

	message := fmt.Sprintf("✅ *Backup selesai*\n\nFile: %s\nJumlah file: %d\nUkuran: %s",
		result.Filename, len(result.Files), formatSize(result.TotalSize))
	go func() {
		if err := s.SendGroupMessage("", message); err != nil {
			log.Printf("WhatsApp: backup notification failed: %v", err)
		}
	}()
}

// NotifyRestoreCompleted posts a restore summary to the configured group in
// the background.
func (s *WhatsAppService) NotifyRestoreCompleted(filename string, result *backup.RestoreResult) {
	if !s.notificationsConfigured() {
		return
	}

	failed := 0
	for _, tr := range result.Tables {
		if !tr.Success {
			failed++
		}
	}

	message := fmt.Sprintf("♻️ *Restore selesai*\n\nSumber: %s\nBaris dipulihkan: %d", filename, result.TotalRestored)
	if failed > 0 {
		message += fmt.Sprintf("\nTabel gagal: %d", failed)
	}
	go func() {
		if err := s.SendGroupMessage("", message); err != nil {
			log.Printf("WhatsApp: restore notification failed: %v", err)
		}
	}()
}

func (s *WhatsAppService) notificationsConfigured() bool {
	return s.settings.GetString("whatsapp_gateway_url") != "" && s.settings.GetString("whatsapp_group_id") != ""
}

func formatSize(size int64) string {
	switch {
	case size >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	case size >= 1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%d B", size)
	}
}
