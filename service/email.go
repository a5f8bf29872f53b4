package service

import (
	"fmt"
	"time"

	"ledger/config"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务，用于备份操作完成后的通知
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendBackupCreatedEmail 发送备份创建成功通知
func (s *EmailService) SendBackupCreatedEmail(toEmail, username, backupName string, expenseCount, incomeCount int) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用，请配置 email.enabled=true")
	}

	subject := "【记账系统】备份创建成功"
	body := s.generateBackupEmailBody(username, "备份已创建",
		fmt.Sprintf("您的数据备份 <strong>%s</strong> 已创建成功，共包含 %d 条支出记录和 %d 条收入记录。",
			backupName, expenseCount, incomeCount))

	return s.sendEmail(toEmail, subject, body)
}

// SendBackupRestoredEmail 发送备份恢复完成通知
func (s *EmailService) SendBackupRestoredEmail(toEmail, username string, expensesRestored, incomesRestored int) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用，请配置 email.enabled=true")
	}

	subject := "【记账系统】备份恢复完成"
	body := s.generateBackupEmailBody(username, "备份已恢复",
		fmt.Sprintf("您的活跃数据已由备份整体替换，共恢复 %d 条支出记录和 %d 条收入记录。归档数据未受影响。",
			expensesRestored, incomesRestored))

	return s.sendEmail(toEmail, subject, body)
}

// generateBackupEmailBody 生成备份通知邮件内容
func (s *EmailService) generateBackupEmailBody(username, title, message string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #2563eb, #1d4ed8); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>💰 记账系统 - %s</h1>
        </div>
        <div class="content">
            <p>尊敬的 <strong>%s</strong>，您好！</p>
            <p>%s</p>
            <p>操作时间：%s</p>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
            <p>© 记账系统 - 您的个人财务管理助手</p>
        </div>
    </div>
</body>
</html>
`, title, username, message, time.Now().Format("2006-01-02 15:04:05"))
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}
