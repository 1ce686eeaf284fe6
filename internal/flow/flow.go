// Package flow implements the receipt session manager: the per-chat
// slot-filling state machine that turns inbound chat messages into persisted
// transactions. It is pure orchestration over injected collaborators; it
// never inspects raw reply text itself (that is the commands classifier's
// job) and never touches a process-wide variable (session state lives behind
// session.Store).
package flow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/retail-receipt-ingest/internal/commands"
	"github.com/retail-receipt-ingest/internal/domain/session"
	"github.com/retail-receipt-ingest/internal/domain/store"
	"github.com/retail-receipt-ingest/internal/domain/transaction"
	"github.com/retail-receipt-ingest/internal/extraction"
	"github.com/retail-receipt-ingest/internal/telegram"
)

// Replier sends a plain-text reply to a chat.
type Replier interface {
	Reply(ctx context.Context, chatID int64, text string) error
}

// FileResolver turns a chat-platform file ID into a downloadable URL.
type FileResolver interface {
	FileURL(fileID string) (string, error)
}

// Result is the webhook-level outcome of one inbound message. OK is false
// only when the sender's chat has no registered store; everything else is
// acknowledged so the platform does not redeliver.
type Result struct {
	OK bool
}

// Deps are the collaborators the manager orchestrates.
type Deps struct {
	Sessions     session.Store
	Extractor    extraction.Extractor
	Transactions transaction.Repository
	Stores       store.Repository
	Employees    store.EmployeeRepository
	Classifier   commands.Classifier
	Files        FileResolver
	Replier      Replier
	Logger       *slog.Logger
}

// Manager drives the NONE -> COLLECTING -> CONFIRMING -> COMMITTED session
// lifecycle for every chat.
type Manager struct {
	deps Deps

	required    []string
	idleTimeout time.Duration
	loc         *time.Location

	now func() time.Time
}

// NewManager creates the session manager. The required field set, idle
// timeout and business timezone come from configuration.
func NewManager(deps Deps, required []string, idleTimeout time.Duration, loc *time.Location) *Manager {
	return &Manager{
		deps:        deps,
		required:    required,
		idleTimeout: idleTimeout,
		loc:         loc,
		now:         time.Now,
	}
}

// HandleUpdate processes one inbound message end to end. Every failure is
// converted to a user-facing chat reply; nothing propagates as an error to
// the webhook layer.
func (m *Manager) HandleUpdate(ctx context.Context, in *telegram.Inbound) Result {
	log := m.deps.Logger.With("chat_id", in.ChatID)

	if cmd, arg, ok := botCommand(in.Text); ok {
		switch cmd {
		case "/register":
			m.handleRegister(ctx, in, arg, log)
			return Result{OK: true}
		case "/start":
			m.handleStart(ctx, in, arg, log)
			return Result{OK: true}
		}
	}

	// A new photo always supersedes whatever was in flight.
	if in.PhotoFileID != "" {
		return m.handlePhoto(ctx, in, log)
	}

	now := m.now()
	s, err := m.deps.Sessions.Get(ctx, in.ChatID)
	switch {
	case errors.Is(err, session.ErrNotFound):
		s = nil
	case err != nil:
		log.Error("Failed to load session", "error", err)
		s = nil
	}

	// Idle eviction is checked opportunistically on the next inbound
	// message; there is no background sweep.
	if s != nil && s.Expired(now, m.idleTimeout) {
		if err := m.deps.Sessions.Delete(ctx, in.ChatID); err != nil {
			log.Error("Failed to evict expired session", "error", err)
		}
		log.Info("Session evicted after idle timeout", "idle", now.Sub(s.LastActive).String())
		m.reply(ctx, in.ChatID, msgSessionExpired, log)
		return Result{OK: true}
	}

	if s == nil {
		if strings.TrimSpace(in.Text) == "" {
			m.reply(ctx, in.ChatID, msgSendPhoto, log)
			return Result{OK: true}
		}
		return m.startFromText(ctx, in, log)
	}

	s.Touch(now)

	switch s.State {
	case session.StateCollecting:
		return m.handleCollectingReply(ctx, in, s, log)
	case session.StateConfirming:
		return m.handleConfirmingReply(ctx, in, s, log)
	default:
		log.Warn("Session in unknown state, discarding", "state", string(s.State))
		_ = m.deps.Sessions.Delete(ctx, in.ChatID)
		m.reply(ctx, in.ChatID, msgSendPhoto, log)
		return Result{OK: true}
	}
}

// handlePhoto restarts the flow from a fresh image submission, discarding
// any in-flight session for the chat.
func (m *Manager) handlePhoto(ctx context.Context, in *telegram.Inbound, log *slog.Logger) Result {
	if err := m.deps.Sessions.Delete(ctx, in.ChatID); err != nil {
		log.Error("Failed to discard superseded session", "error", err)
	}

	url, err := m.deps.Files.FileURL(in.PhotoFileID)
	if err != nil {
		log.Error("Failed to resolve photo URL", "error", err)
		m.reply(ctx, in.ChatID, msgExtractionFailed, log)
		return Result{OK: true}
	}

	cand, err := m.deps.Extractor.FromImage(ctx, in.ChatID, url, in.SentAt)
	if err != nil {
		log.Warn("Image extraction failed", "error", err)
		m.reply(ctx, in.ChatID, msgExtractionFailed, log)
		return Result{OK: true}
	}

	return m.adoptCandidate(ctx, in, cand, log)
}

func (m *Manager) startFromText(ctx context.Context, in *telegram.Inbound, log *slog.Logger) Result {
	cand, err := m.deps.Extractor.FromText(ctx, in.ChatID, in.Text, in.SentAt)
	if err != nil {
		log.Warn("Text extraction failed", "error", err)
		m.reply(ctx, in.ChatID, msgExtractionFailed, log)
		return Result{OK: true}
	}
	return m.adoptCandidate(ctx, in, cand, log)
}

// adoptCandidate classifies a freshly extracted candidate and opens a
// session for it, unless it is blank.
func (m *Manager) adoptCandidate(ctx context.Context, in *telegram.Inbound, cand *transaction.Candidate, log *slog.Logger) Result {
	switch transaction.Classify(cand, m.required) {
	case transaction.Blank:
		log.Info("Extraction yielded a blank candidate")
		m.reply(ctx, in.ChatID, msgExtractionFailed, log)
		return Result{OK: true}

	case transaction.Complete:
		s := &session.Session{
			ChatID:     in.ChatID,
			State:      session.StateConfirming,
			Candidate:  cand,
			LastActive: m.now(),
		}
		m.saveAndShowSummary(ctx, s, log)
		return Result{OK: true}

	default: // Incomplete
		missing := transaction.MissingFields(cand, m.required)
		s := &session.Session{
			ChatID:           in.ChatID,
			State:            session.StateCollecting,
			Candidate:        cand,
			MissingFields:    missing,
			LastMissingField: missing[0],
			LastActive:       m.now(),
		}
		if err := m.deps.Sessions.Put(ctx, s); err != nil {
			log.Error("Failed to save session", "error", err)
		}
		log.Info("Session opened", "state", string(s.State), "missing", len(missing))
		m.reply(ctx, in.ChatID, promptFor(missing[0]), log)
		return Result{OK: true}
	}
}

// handleCollectingReply assigns the reply verbatim to the head missing
// field, recomputes the queue, and either asks for the next field or moves
// to confirmation. Change commands are interpreted before the verbatim
// fallback: the stuck-state hint advertises them, so they must not be
// stored as a literal field value.
func (m *Manager) handleCollectingReply(ctx context.Context, in *telegram.Inbound, s *session.Session, log *slog.Logger) Result {
	if cmd := m.deps.Classifier.Classify(ctx, in.Text); cmd.Kind == commands.Change {
		return m.applyChanges(ctx, in, s, cmd.Changes, log)
	}

	if len(s.MissingFields) > 0 {
		s.Candidate.SetField(s.MissingFields[0], strings.TrimSpace(in.Text))
	}

	missing := transaction.MissingFields(s.Candidate, m.required)
	if len(missing) == 0 {
		s.State = session.StateConfirming
		s.MissingFields = nil
		s.LastMissingField = ""
		m.saveAndShowSummary(ctx, s, log)
		return Result{OK: true}
	}

	s.MissingFields = missing

	// Loop guard: the same sole field coming straight back means the reply
	// carried no usable information; say so instead of looping silently.
	if len(missing) == 1 && missing[0] == s.LastMissingField {
		if err := m.deps.Sessions.Put(ctx, s); err != nil {
			log.Error("Failed to save session", "error", err)
		}
		log.Info("Stuck on field", "field", missing[0])
		m.reply(ctx, in.ChatID, msgStuck(missing[0]), log)
		return Result{OK: true}
	}

	s.LastMissingField = missing[0]
	if err := m.deps.Sessions.Put(ctx, s); err != nil {
		log.Error("Failed to save session", "error", err)
	}
	m.reply(ctx, in.ChatID, promptFor(missing[0]), log)
	return Result{OK: true}
}

// handleConfirmingReply routes a reply through the command classifier:
// confirm commits, change mutates fields, anything else re-shows the summary.
func (m *Manager) handleConfirmingReply(ctx context.Context, in *telegram.Inbound, s *session.Session, log *slog.Logger) Result {
	cmd := m.deps.Classifier.Classify(ctx, in.Text)

	switch cmd.Kind {
	case commands.Confirm:
		return m.commit(ctx, in, s, log)

	case commands.Change:
		return m.applyChanges(ctx, in, s, cmd.Changes, log)

	default:
		m.saveAndShowSummary(ctx, s, log)
		return Result{OK: true}
	}
}

// applyChanges writes a change command's field updates into the candidate,
// ignoring fields outside the required set, then routes the session to the
// next prompt or to confirmation. An empty change list is a no-op that only
// re-shows where the session stands.
func (m *Manager) applyChanges(ctx context.Context, in *telegram.Inbound, s *session.Session, changes []commands.FieldChange, log *slog.Logger) Result {
	allowed := make(map[string]bool, len(m.required))
	for _, f := range m.required {
		allowed[f] = true
	}
	for _, ch := range changes {
		if !allowed[ch.Field] {
			log.Info("Change to unrecognized field ignored", "field", ch.Field)
			continue
		}
		s.Candidate.SetField(ch.Field, ch.Value)
	}

	missing := transaction.MissingFields(s.Candidate, m.required)
	if len(missing) > 0 {
		s.State = session.StateCollecting
		s.MissingFields = missing
		s.LastMissingField = missing[0]
		if err := m.deps.Sessions.Put(ctx, s); err != nil {
			log.Error("Failed to save session", "error", err)
		}
		m.reply(ctx, in.ChatID, promptFor(missing[0]), log)
		return Result{OK: true}
	}

	s.MissingFields = nil
	s.LastMissingField = ""
	m.saveAndShowSummary(ctx, s, log)
	return Result{OK: true}
}

// commit resolves the reporting store, validates and persists the candidate,
// and ends the session on success. The session survives every failure path
// so the user can fix the data or simply retry.
func (m *Manager) commit(ctx context.Context, in *telegram.Inbound, s *session.Session, log *slog.Logger) Result {
	st, err := m.deps.Stores.GetByTelegramID(ctx, m.senderID(in))
	if err != nil {
		var notFound store.ErrStoreNotFound
		if errors.As(err, &notFound) {
			log.Warn("Commit refused, no store registered for chat")
			m.reply(ctx, in.ChatID, msgStoreNotFound, log)
			return Result{OK: false}
		}
		log.Error("Store lookup failed", "error", err)
		m.reply(ctx, in.ChatID, msgPersistFailed, log)
		return Result{OK: true}
	}

	tx, err := transaction.FromCandidate(s.Candidate, m.required, st.ID, m.loc, m.now())
	if err != nil {
		m.handleInvalidCandidate(ctx, in, s, err, log)
		return Result{OK: true}
	}

	if err := m.deps.Transactions.Insert(ctx, tx); err != nil {
		// Session retained so a bare re-confirm can be attempted.
		log.Error("Transaction insert failed", "error", err)
		if putErr := m.deps.Sessions.Put(ctx, s); putErr != nil {
			log.Error("Failed to save session", "error", putErr)
		}
		m.reply(ctx, in.ChatID, msgPersistFailed, log)
		return Result{OK: true}
	}

	if err := m.deps.Sessions.Delete(ctx, in.ChatID); err != nil {
		log.Error("Failed to delete committed session", "error", err)
	}
	log.Info("Transaction committed", "transaction_id", tx.ID.String(), "store_id", st.ID.String(), "amount", tx.Amount)
	m.reply(ctx, in.ChatID, msgCommitted, log)
	return Result{OK: true}
}

// handleInvalidCandidate maps a commit validation error to the field that
// caused it, clears that field, and drops back to collecting it.
func (m *Manager) handleInvalidCandidate(ctx context.Context, in *telegram.Inbound, s *session.Session, cause error, log *slog.Logger) {
	var field, reason string
	switch {
	case errors.Is(cause, transaction.ErrInvalidAmount):
		field, reason = transaction.FieldAmount, "it must be a positive number"
	case errors.Is(cause, transaction.ErrInvalidDate):
		field, reason = transaction.FieldDate, "I couldn't parse it as a date"
	case errors.Is(cause, transaction.ErrDateInFuture):
		field, reason = transaction.FieldDate, "it is in the future"
	default:
		log.Error("Candidate validation failed", "error", cause)
		m.reply(ctx, in.ChatID, msgConfirmInstructions, log)
		return
	}

	log.Info("Candidate field rejected at commit", "field", field, "error", cause)
	m.reply(ctx, in.ChatID, msgInvalidField(field, reason), log)
	if err := m.deps.Sessions.Put(ctx, s); err != nil {
		log.Error("Failed to save session", "error", err)
	}
}

func (m *Manager) handleRegister(ctx context.Context, in *telegram.Inbound, arg string, log *slog.Logger) {
	name := strings.TrimSpace(arg)
	if name == "" {
		m.reply(ctx, in.ChatID, msgRegisterUsage, log)
		return
	}

	st, err := store.NewStore(name, m.senderID(in))
	if err != nil {
		m.reply(ctx, in.ChatID, msgRegisterUsage, log)
		return
	}

	if err := m.deps.Stores.Create(ctx, st); err != nil {
		var dup store.ErrDuplicateTelegramID
		if errors.As(err, &dup) {
			m.reply(ctx, in.ChatID, msgAlreadyRegistered, log)
			return
		}
		log.Error("Store registration failed", "error", err)
		m.reply(ctx, in.ChatID, msgPersistFailed, log)
		return
	}

	log.Info("Store registered", "store_id", st.ID.String(), "name", st.Name)
	m.reply(ctx, in.ChatID, msgRegistered(st.Name), log)
}

func (m *Manager) handleStart(ctx context.Context, in *telegram.Inbound, arg string, log *slog.Logger) {
	token := strings.TrimSpace(arg)
	if token == "" {
		m.reply(ctx, in.ChatID, msgStartWelcome, log)
		return
	}

	emp, err := m.deps.Employees.GetByOnboardToken(ctx, token)
	if err != nil {
		var notFound store.ErrEmployeeNotFound
		if errors.As(err, &notFound) {
			m.reply(ctx, in.ChatID, msgInvalidToken, log)
			return
		}
		log.Error("Onboarding token lookup failed", "error", err)
		m.reply(ctx, in.ChatID, msgInvalidToken, log)
		return
	}

	emp.CompleteOnboarding(m.senderID(in))
	if err := m.deps.Employees.Update(ctx, emp); err != nil {
		log.Error("Employee onboarding update failed", "error", err)
		m.reply(ctx, in.ChatID, msgPersistFailed, log)
		return
	}

	log.Info("Employee onboarded", "employee_id", emp.ID.String())
	m.reply(ctx, in.ChatID, msgOnboarded(emp.Name), log)
}

// saveAndShowSummary persists the session in CONFIRMING and shows the
// candidate summary with the confirm/change usage hint.
func (m *Manager) saveAndShowSummary(ctx context.Context, s *session.Session, log *slog.Logger) {
	s.State = session.StateConfirming
	if err := m.deps.Sessions.Put(ctx, s); err != nil {
		log.Error("Failed to save session", "error", err)
	}
	m.reply(ctx, s.ChatID, transaction.Summary(s.Candidate)+"\n"+msgConfirmInstructions, log)
}

func (m *Manager) reply(ctx context.Context, chatID int64, text string, log *slog.Logger) {
	if err := m.deps.Replier.Reply(ctx, chatID, text); err != nil {
		log.Error("Failed to send reply", "error", err)
	}
}

// senderID prefers the message author's Telegram ID and falls back to the
// chat ID (identical for private chats, which is the only supported mode).
func (m *Manager) senderID(in *telegram.Inbound) int64 {
	if in.TelegramID != 0 {
		return in.TelegramID
	}
	return in.ChatID
}

// botCommand splits a "/command rest" message. Returns false for plain text.
func botCommand(text string) (cmd, arg string, ok bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return "", "", false
	}
	cmd, arg, _ = strings.Cut(trimmed, " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg), true
}
