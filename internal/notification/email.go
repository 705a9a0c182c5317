package notification

import (
	"fmt"
	"html"
)

// checkTypeNames maps check type identifiers to the names users see.
var checkTypeNames = map[string]string{
	"wwcc":         "Working with Children Check",
	"police_check": "Police Clearance",
	"identity":     "Identity Verification",
}

// CheckResult is the slice of a verification outcome the email needs.
type CheckResult struct {
	CheckType string
	Status    string
	Message   string
}

// Compose builds the outcome email for one recorded check. The body states
// the decision and, for non-verified outcomes, the engine's message and what
// happens next.
func Compose(contact Contact, result CheckResult) Email {
	checkTypeName, ok := checkTypeNames[result.CheckType]
	if !ok {
		checkTypeName = result.CheckType
	}

	var decision string
	switch result.Status {
	case "verified":
		decision = "Approved"
	case "rejected":
		decision = "Declined"
	default:
		decision = "Under Review"
	}

	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background-color: #2c6e63; padding: 20px; text-align: center;">
    <h1 style="color: white; margin: 0;">CareGuard</h1>
    <p style="color: white; margin: 5px 0;">Trusted Childcare Platform</p>
  </div>
  <div style="padding: 30px 20px;">
    <h2 style="color: #333;">Verification Update</h2>
    <p>Hi %s,</p>
%s    <p>If you have any questions, please contact our support team.</p>
    <p>Best regards,<br>The CareGuard Team</p>
  </div>
</div>`, html.EscapeString(contact.FirstName), decisionBlock(result.Status, checkTypeName, result.Message))

	return Email{
		To:      contact.Email,
		Subject: fmt.Sprintf("%s %s - CareGuard", checkTypeName, decision),
		HTML:    body,
	}
}

func decisionBlock(status, checkTypeName, message string) string {
	switch status {
	case "verified":
		return fmt.Sprintf(`    <div style="background-color: #d4edda; border: 1px solid #c3e6cb; padding: 15px; border-radius: 8px; margin: 20px 0;">
      <h3 style="color: #155724; margin-top: 0;">Verification Approved</h3>
      <p style="color: #155724;">Your %s has been successfully verified.</p>
    </div>
`, checkTypeName)
	case "rejected":
		return fmt.Sprintf(`    <div style="background-color: #f8d7da; border: 1px solid #f5c6cb; padding: 15px; border-radius: 8px; margin: 20px 0;">
      <h3 style="color: #721c24; margin-top: 0;">Verification Declined</h3>
      <p style="color: #721c24;">%s</p>
      <p style="color: #721c24;">Please review the requirements and resubmit your documentation.</p>
    </div>
`, html.EscapeString(message))
	default:
		return fmt.Sprintf(`    <div style="background-color: #fff3cd; border: 1px solid #ffeaa7; padding: 15px; border-radius: 8px; margin: 20px 0;">
      <h3 style="color: #856404; margin-top: 0;">Manual Review Required</h3>
      <p style="color: #856404;">%s</p>
      <p style="color: #856404;">Our team will review your submission and get back to you within 2-3 business days.</p>
    </div>
`, html.EscapeString(message))
	}
}
