package service

import (
	"testing"

	"ledger/config"

	"github.com/stretchr/testify/assert"
)

func TestEmailService_Disabled(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: false})

	err := svc.SendBackupCreatedEmail("user@example.com", "testuser", "备份 2024-01-20", 2, 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "未启用")

	err = svc.SendBackupRestoredEmail("user@example.com", "testuser", 2, 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "未启用")
}

func TestEmailService_BodyContainsSummary(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: true})

	body := svc.generateBackupEmailBody("testuser", "备份已创建", "共 2 条支出")
	assert.Contains(t, body, "testuser")
	assert.Contains(t, body, "备份已创建")
	assert.Contains(t, body, "共 2 条支出")
}
