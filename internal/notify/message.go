package notify

import (
	"fmt"
	"strings"

	"github.com/Greybash/ngo-service/internal/model"
)

const signature = "Best regards,\nEvergreen Villages Trust"

// 邮件类型，用于指标标签
const (
	KindReceipt           = "donation_receipt"
	KindApplicationStatus = "application_status"
)

// Message 纯文本邮件
type Message struct {
	Kind    string `json:"kind"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ReceiptMessage 捐款成功回执
func ReceiptMessage(d *model.DonationModel) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s %s,\n\n", d.FirstName, d.LastName)
	fmt.Fprintf(&b, "Thank you for your donation of INR %s towards %s.\n\n", d.Amount.StringFixed(2), d.Cause.Label())
	fmt.Fprintf(&b, "Donation ID: %d\nPayment ID: %s\nOrder ID: %s\n\n", d.Id, d.PaymentID, d.OrderID)
	b.WriteString(signature)

	return Message{
		Kind:    KindReceipt,
		To:      d.Email,
		Subject: fmt.Sprintf("Donation Receipt #%d", d.Id),
		Body:    b.String(),
	}
}

// ApplicationStatusMessage 只有入围和拒绝会通知申请人
func ApplicationStatusMessage(app *model.JobApplicationModel, jobTitle string) (Message, bool) {
	var body string
	switch app.Status {
	case model.ApplicationStatusShortlisted:
		body = fmt.Sprintf("Dear %s,\n\nCongratulations! Your application for %s has been shortlisted. "+
			"We will contact you soon with next steps.\n\n%s", app.Name, jobTitle, signature)
	case model.ApplicationStatusRejected:
		body = fmt.Sprintf("Dear %s,\n\nThank you for your interest in the %s position. "+
			"After careful consideration, we have decided to move forward with other candidates.\n\n"+
			"We appreciate your time and wish you the best in your job search.\n\n%s", app.Name, jobTitle, signature)
	case model.ApplicationStatusPending, model.ApplicationStatusReviewed:
		return Message{}, false
	default:
		return Message{}, false
	}

	return Message{
		Kind:    KindApplicationStatus,
		To:      app.Email,
		Subject: fmt.Sprintf("Application Update - %s", jobTitle),
		Body:    body,
	}, true
}
