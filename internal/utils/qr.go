package utils

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/skip2/go-qrcode"

	"smartshop_back_end/internal/models"
)

// GenerateSepaQR génère un QR SEPA (EPC) en base64 prêt à mettre dans <img src="...">
func GenerateSepaQR(iban, bic, name, ref string, amount float64) (string, error) {
	// format EPC basique
	sepa := fmt.Sprintf(`BCD
001
1
SCT
%s
%s
%s
EUR%.2f
%s`, bic, name, iban, amount, ref)

	png, err := qrcode.Encode(sepa, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// OrderPaymentQR construit le QR de virement pour une commande, avec les
// coordonnées bancaires de l'entreprise depuis l'environnement.
func OrderPaymentQR(order models.Order) (string, error) {
	iban := os.Getenv("COMPANY_IBAN")
	if iban == "" {
		iban = "BE12345678901234"
	}
	bic := os.Getenv("COMPANY_BIC")
	if bic == "" {
		bic = "KREDBEBB"
	}
	companyName := os.Getenv("COMPANY_NAME")
	if companyName == "" {
		companyName = "SmartShop"
	}
	return GenerateSepaQR(iban, bic, companyName, order.OrderNumber, order.TotalAmount)
}
