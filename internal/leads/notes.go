package leads

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/brickmetric/leadpulse/internal/llm"
	"github.com/brickmetric/leadpulse/internal/logger"
)

const (
	// defaultMinNotesRunes is the shortest notes text worth a model call.
	// Anything shorter carries too little signal to justify the latency.
	defaultMinNotesRunes = 12

	defaultMaxLogLength = 200
)

// NotesInterpreter turns free-text lead notes into numeric signals via the
// gateway. Every failure mode degrades to neutral defaults; interpretation
// never fails the scoring request.
type NotesInterpreter struct {
	gateway   *llm.Gateway
	minRunes  int
	maxLogLen int
	logger    *zap.Logger
}

func NewNotesInterpreter(gateway *llm.Gateway, minNotesRunes, maxLogLength int, log *zap.Logger) *NotesInterpreter {
	if minNotesRunes <= 0 {
		minNotesRunes = defaultMinNotesRunes
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &NotesInterpreter{
		gateway:   gateway,
		minRunes:  minNotesRunes,
		maxLogLen: maxLogLength,
		logger:    log,
	}
}

// Interpret returns note signals and whether the model contributed to them.
// Empty or short notes skip the gateway entirely; callers can rely on zero
// gateway traffic for leads without notes.
func (n *NotesInterpreter) Interpret(ctx context.Context, leadID, notes string) (NoteSignals, bool) {
	notes = strings.TrimSpace(notes)
	if notes == "" || utf8.RuneCountInString(notes) < n.minRunes {
		return NoteSignals{}, false
	}

	if n.gateway == nil {
		return NoteSignals{}, false
	}

	prompt := llm.BuildPrompt(llm.TemplateLeadNotes, map[string]string{"notes": notes})

	n.logger.Debug("interpreting lead notes",
		zap.String("lead_id", leadID),
		zap.Int("notes_length", utf8.RuneCountInString(notes)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, n.maxLogLen)),
	)

	out, err := n.gateway.Invoke(ctx, prompt)
	if err != nil {
		n.logger.Debug("note interpretation unavailable, using neutral defaults",
			zap.String("lead_id", leadID),
			zap.Error(err),
		)
		return NoteSignals{}, false
	}

	obj := llm.ExtractObject(out.Text)
	if obj == nil {
		n.logger.Debug("no JSON object in note interpretation response",
			zap.String("lead_id", leadID),
			zap.String("response_preview", logger.TruncateForLog(out.Text, n.maxLogLen)),
		)
		return NoteSignals{}, false
	}

	signals := NoteSignals{
		Intent:      llm.Clamp01(llm.CoerceFloat(obj["intent_level"])),
		Urgency:     llm.Clamp01(llm.CoerceFloat(obj["urgency_level"])),
		Constraints: llm.CoerceString(obj["constraints"]),
	}

	n.logger.Debug("note signals parsed",
		zap.String("lead_id", leadID),
		zap.Float64("intent_level", signals.Intent),
		zap.Float64("urgency_level", signals.Urgency),
		zap.Int("attempts", out.Attempts),
	)

	return signals, true
}
