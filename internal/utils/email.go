package utils

import (
	"fmt"
	"log"
	"os"

	"github.com/wneessen/go-mail"

	"smartshop_back_end/internal/models"
)

func sendMail(to, subject, htmlBody string) error {
	msg := mail.NewMsg()

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@smartshop.vn"
	}
	if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// SendOrderConfirmationEmail envoie la confirmation de commande. Meilleur
// effort : un échec d'envoi ne remet jamais la commande en cause.
func SendOrderConfirmationEmail(to string, order models.Order, sepaQRBase64 string) {
	subject := fmt.Sprintf("Confirmation de votre commande %s", order.OrderNumber)
	if err := sendMail(to, subject, orderConfirmationHTML(order, sepaQRBase64)); err != nil {
		log.Printf("⚠️ Échec envoi email de confirmation pour %s: %v", order.OrderNumber, err)
	}
}

// SendOTPEmail envoie le code de réinitialisation de mot de passe.
func SendOTPEmail(to, otp string) error {
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Réinitialisation de mot de passe</h2>
		<p>Votre code de vérification :</p>
		<p style="font-size: 32px; font-weight: bold; letter-spacing: 8px;">%s</p>
		<p style="color: #555;">Ce code expire dans 10 minutes. Si vous n'avez pas demandé
		de réinitialisation, ignorez cet e-mail.</p>
	</div>
</body>
</html>`, otp)

	return sendMail(to, "Votre code de vérification", body)
}

// orderConfirmationHTML génère le HTML de confirmation de commande,
// avec le QR de virement SEPA pour les paiements par virement.
func orderConfirmationHTML(order models.Order, sepaQRBase64 string) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%.2f€</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%.2f€</td>
			</tr>`, item.ProductName, item.Quantity, item.UnitPrice, item.TotalPrice)
	}

	qrHTML := ""
	if sepaQRBase64 != "" {
		qrHTML = fmt.Sprintf(`
		<h3>Paiement par virement</h3>
		<p>Scannez ce QR code avec votre application bancaire :</p>
		<img src="%s" alt="QR SEPA" width="200" height="200"/>
		<p>Communication : <strong>%s</strong></p>`, sepaQRBase64, order.OrderNumber)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Confirmation de votre commande %s</h2>
		<p>Bonjour %s,</p>
		<p>Votre commande a été enregistrée avec succès.</p>

		<h3>Détails de la commande</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Produit</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">%.2f€</td>
				</tr>
			</tfoot>
		</table>
		%s

		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe SmartShop</strong>
		</p>
	</div>
</body>
</html>`, order.OrderNumber, order.CustomerInfo.FullName, itemsHTML, order.TotalAmount, qrHTML)
}
