package mailing

import (
	"github.com/prodgeti/foodgram/internal/utils"
	"gopkg.in/gomail.v2"
	"strconv"
)

type MailConfig struct {
	AppURL       string
	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPEmail    string
	SMTPPassword string
}

func LoadMailConfig() MailConfig {
	return MailConfig{
		AppURL:       utils.GetConfig("APP_URL"),
		SMTPHost:     utils.GetConfig("SMTP_HOST"),
		SMTPPort:     utils.GetConfig("SMTP_PORT"),
		SMTPSender:   utils.GetConfig("SMTP_SENDER_NAME"),
		SMTPEmail:    utils.GetConfig("SMTP_AUTH_EMAIL"),
		SMTPPassword: utils.GetConfig("SMTP_AUTH_PASSWORD"),
	}
}

func SendMail(toEmail string, subject string, body string) error {
	emailConfig := LoadMailConfig()

	mailer := gomail.NewMessage()
	mailer.SetHeader("From", emailConfig.SMTPEmail)
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)
	port, err := strconv.Atoi(emailConfig.SMTPPort)
	if err != nil {
		return err
	}
	dialer := gomail.NewDialer(
		emailConfig.SMTPHost,
		port,
		emailConfig.SMTPEmail,
		emailConfig.SMTPPassword,
	)

	err = dialer.DialAndSend(mailer)
	if err != nil {
		return err
	}

	return nil
}

// SendPasswordResetMail mails the short-lived reset token as a link on APP_URL.
func SendPasswordResetMail(toEmail string, token string) error {
	cfg := LoadMailConfig()
	body := "<p>To reset your password, follow the link below:</p>" +
		"<p><a href=\"" + cfg.AppURL + "/reset-password?token=" + token + "\">Reset password</a></p>" +
		"<p>The link is valid for 30 minutes.</p>"
	return SendMail(toEmail, "Password reset", body)
}

// SendWelcomeMail greets a newly registered user.
func SendWelcomeMail(toEmail string, username string) error {
	body := "<p>Hi " + username + ", welcome to Foodgram!</p>" +
		"<p>Publish your recipes, follow other authors and build shopping lists.</p>"
	return SendMail(toEmail, "Welcome to Foodgram", body)
}
