package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/env"
)

// SendMail sends an email via SMTP
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// SendOrderPaidMail confirms to the buyer that their photo order was paid.
func SendOrderPaidMail(to string, order *models.Order, albumTitle string) error {
	subject := fmt.Sprintf("Pagamento confirmado: %s", albumTitle)
	body := fmt.Sprintf(
		"<p>Recebemos o pagamento do pedido <strong>%s</strong> do álbum <strong>%s</strong>.</p>"+
			"<p>Valor: R$ %.2f</p>"+
			"<p>As fotos selecionadas já estão liberadas em alta resolução no link do álbum.</p>",
		order.ID, albumTitle, order.TotalAmount,
	)
	return SendMail(to, subject, body)
}

// SendAlbumPublishedMail notifies the client that their album is ready.
func SendAlbumPublishedMail(to string, album *models.Album, shareURL string) error {
	subject := fmt.Sprintf("Suas fotos estão prontas: %s", album.Title)
	body := fmt.Sprintf(
		"<p>O álbum <strong>%s</strong> está disponível para visualização e seleção de fotos.</p>"+
			`<p><a href="%s">Abrir álbum</a></p>`,
		album.Title, shareURL,
	)
	return SendMail(to, subject, body)
}
