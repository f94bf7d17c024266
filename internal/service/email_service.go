package service

import (
	"context"
	"fmt"
	"html"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/CheickOuedraogo/tuteur-backend/internal/curriculum"
	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
)

// sesSender is the part of the SES client used to send mail.
type sesSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends transactional e-mail through Amazon SES
type EmailService struct {
	client     sesSender
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	log        *logger.Logger
}

// NewEmailService creates an email service. Without a sender address the
// service is disabled and every send is a logged no-op.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, log *logger.Logger) (*EmailService, error) {
	if log == nil {
		log = logger.Nop()
	}
	if fromEmail == "" {
		log.Info("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, log: log}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Info("email service enabled", "from", fromEmail, "region", awsRegion)
	return newEmailService(sesv2.NewFromConfig(cfg), fromEmail, fromName, appBaseURL, log), nil
}

func newEmailService(client sesSender, fromEmail, fromName, appBaseURL string, log *logger.Logger) *EmailService {
	if log == nil {
		log = logger.Nop()
	}
	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		log:        log,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s != nil && s.enabled
}

// SendWelcomeEmail greets a newly registered learner.
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName, classe string) error {
	if !s.IsEnabled() {
		if s != nil {
			s.log.Debug("skipping welcome email (service disabled)", "to", toEmail)
		}
		return nil
	}

	grade := curriculum.GradeLabel(classe)
	subject := "Bienvenue sur FASO Tuteur !"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #009e49; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #ef2b2d; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Bienvenue sur FASO Tuteur !</h1>
		</div>
		<div class="content">
			<p>Bonjour %s,</p>
			<p>Ton compte est prêt. Sandy le renard t'attend pour réviser le programme de %s.</p>
			<ul>
				<li>Découvre les leçons de chaque matière</li>
				<li>Gagne des points en réussissant les exercices</li>
				<li>Suis ta progression chapitre par chapitre</li>
			</ul>
			<p style="text-align: center;">
				<a href="%s" class="button">Commencer</a>
			</p>
		</div>
		<div class="footer">
			<p>Ceci est un message automatique de FASO Tuteur. Merci de ne pas répondre.</p>
		</div>
	</div>
</body>
</html>
`, html.EscapeString(toName), html.EscapeString(grade), s.appBaseURL)

	textBody := fmt.Sprintf(`Bonjour %s,

Ton compte est prêt. Sandy le renard t'attend pour réviser le programme de %s.

- Découvre les leçons de chaque matière
- Gagne des points en réussissant les exercices
- Suis ta progression chapitre par chapitre

Commencer : %s

---
Ceci est un message automatique de FASO Tuteur. Merci de ne pas répondre.
`, toName, grade, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	messageID := ""
	if result != nil && result.MessageId != nil {
		messageID = *result.MessageId
	}
	s.log.Info("email sent", "to", toEmail, "subject", subject, "message_id", messageID)
	return nil
}
