package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"khamboran/internal/models"
)

// EmailService sends the dashboard summary report to a teacher via
// Amazon SES.
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates the service. An empty fromEmail yields a disabled
// service that skips every send instead of failing.
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)
	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s != nil && s.enabled
}

// SendDashboardReport emails the current class rollup to a teacher.
func (s *EmailService) SendDashboardReport(ctx context.Context, toEmail, toName string, rows []models.StudentRow) error {
	if !s.IsEnabled() {
		log.Printf("Skipping email send (service disabled): dashboard report to %s", toEmail)
		return nil
	}

	date := time.Now().Format("2 Jan 2006")
	subject := fmt.Sprintf("สรุปผลการเรียนรู้คำโบราณ %s", date)

	var htmlRows strings.Builder
	var textRows strings.Builder
	for i, row := range rows {
		fmt.Fprintf(&htmlRows,
			"<tr><td>%d</td><td>%s</td><td>%s/%s</td><td>%d</td><td>%.1f</td><td>%d</td><td>%s</td></tr>\n",
			i+1, row.Name, row.Grade, row.Room, row.TotalScore, row.AverageScore, row.CompletionCount, row.RankTier)
		fmt.Fprintf(&textRows, "%d. %s (%s/%s) — รวม %d เฉลี่ย %.1f จบ %d รอบ [%s]\n",
			i+1, row.Name, row.Grade, row.Room, row.TotalScore, row.AverageScore, row.CompletionCount, row.RankTier)
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 700px; margin: 0 auto; padding: 20px; }
		.header { background-color: #8e5a2d; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		table { border-collapse: collapse; width: 100%%; }
		th, td { border: 1px solid #ddd; padding: 6px 10px; text-align: left; }
		th { background-color: #eee2d0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>รายงานผลการเรียนรู้</h1>
		</div>
		<div class="content">
			<p>เรียน %s,</p>
			<p>สรุปผลการเล่นเกมคำศัพท์โบราณของนักเรียน ณ วันที่ %s</p>
			<table>
				<tr><th>อันดับ</th><th>ชื่อ</th><th>ชั้น/ห้อง</th><th>คะแนนรวม</th><th>เฉลี่ย</th><th>จบกี่รอบ</th><th>ระดับ</th></tr>
				%s
			</table>
			<p>ดูรายละเอียดเพิ่มเติมได้ที่ <a href="%s/teacher">แดชบอร์ดครู</a></p>
		</div>
		<div class="footer">
			<p>อีเมลอัตโนมัติจากระบบ Khamboran กรุณาอย่าตอบกลับ</p>
		</div>
	</div>
</body>
</html>
`, toName, date, htmlRows.String(), s.appBaseURL)

	textBody := fmt.Sprintf(`เรียน %s,

สรุปผลการเล่นเกมคำศัพท์โบราณของนักเรียน ณ วันที่ %s

%s
ดูรายละเอียดเพิ่มเติม: %s/teacher

---
อีเมลอัตโนมัติจากระบบ Khamboran กรุณาอย่าตอบกลับ
`, toName, date, textRows.String(), s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

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

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
