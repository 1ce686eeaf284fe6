package flow

import (
	"fmt"

	"github.com/retail-receipt-ingest/internal/domain/transaction"
)

// User-facing reply texts. The bot speaks plain text only; the chat channel
// renders nothing richer than fenced code blocks.
const (
	msgSendPhoto = "Please send a photo of the deposit slip to get started."

	msgExtractionFailed = "Sorry, I couldn't read anything from that. Please resend a clearer photo of the deposit slip."

	msgSessionExpired = "This session timed out. Please resend the photo of the deposit slip to start over."

	msgConfirmInstructions = "Reply \"confirm\" to save it, or \"change field:value\" to fix something (e.g. change amount:500, date:2024-01-05)."

	msgCommitted = "Saved! The transaction has been recorded. Send another photo anytime."

	msgPersistFailed = "Saving failed on our side. Nothing was recorded — please reply \"confirm\" again to retry."

	msgStoreNotFound = "I don't know which store this chat reports for yet. Ask your manager to register with /register <store name> first."

	msgRegisterUsage = "Usage: /register <store name>"

	msgAlreadyRegistered = "A store is already registered for this chat."

	msgInvalidToken = "That onboarding link is invalid or was already used. Ask your manager for a fresh one."

	msgStartWelcome = "Hi! Send a photo of a deposit slip and I'll record it. If you were given an onboarding link, open it to finish setup."
)

func msgRegistered(name string) string {
	return fmt.Sprintf("Store %q registered. Send a photo of a deposit slip anytime to record a transaction.", name)
}

func msgOnboarded(name string) string {
	return fmt.Sprintf("Welcome aboard, %s! Send a photo of a deposit slip and I'll record it.", name)
}

func msgStuck(field string) string {
	return fmt.Sprintf("I still couldn't get a usable %s from that. Reply \"change %s:<value>\" to set it directly, or send a new photo to start over.", field, field)
}

func msgInvalidField(field, reason string) string {
	return fmt.Sprintf("The %s doesn't look right (%s). %s", field, reason, msgConfirmInstructions)
}

// fieldPrompts are the slot-filling questions, one per collectable field.
var fieldPrompts = map[string]string{
	transaction.FieldAmount:    "How much was the deposit? (numbers only)",
	transaction.FieldDate:      "What date was the deposit made? (e.g. 2024-01-05)",
	transaction.FieldReference: "What is the reference number on the slip?",
	transaction.FieldSender:    "Who sent or deposited the money?",
	transaction.FieldType:      "What type of transaction is this? (cash or ewallet)",
}

func promptFor(field string) string {
	if p, ok := fieldPrompts[field]; ok {
		return p
	}
	return fmt.Sprintf("What is the %s?", field)
}
