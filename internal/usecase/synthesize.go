package usecase

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"text/template"

	"docqa/internal/domain"
	"docqa/internal/port"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

// InsufficientInformation is the fixed refusal returned when retrieval
// produced nothing to ground an answer on. The prompt instructs the model
// to emit the same sentence when the passages miss the question.
const InsufficientInformation = "I don't have enough information in the uploaded documents to answer that."

// Synthesizer assembles a grounded prompt from retrieved passages and chat
// history and runs it through the generation model. Citations cover exactly
// the passages that made it into the prompt.
type Synthesizer struct {
	llm           port.LLM
	store         port.DocumentStore
	contextBudget int
	historyTurns  int
	tmpl          *template.Template
}

type promptPassage struct {
	Number  int
	DocName string
	Text    string
}

type promptData struct {
	Passages []promptPassage
	History  []domain.Turn
	Question string
}

func NewSynthesizer(llm port.LLM, store port.DocumentStore, contextBudget, historyTurns int) (*Synthesizer, error) {
	if contextBudget <= 0 {
		return nil, fmt.Errorf("%w: context budget must be positive, got %d", domain.ErrConfiguration, contextBudget)
	}
	if historyTurns < 0 {
		return nil, fmt.Errorf("%w: history turns must not be negative, got %d", domain.ErrConfiguration, historyTurns)
	}

	raw, err := promptTemplates.ReadFile("templates/answer_prompt.txt")
	if err != nil {
		return nil, fmt.Errorf("load prompt template: %w", err)
	}
	tmpl, err := template.New("answer").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}

	return &Synthesizer{
		llm:           llm,
		store:         store,
		contextBudget: contextBudget,
		historyTurns:  historyTurns,
		tmpl:          tmpl,
	}, nil
}

// Synthesize turns retrieved passages into a cited answer. With no
// passages it returns the fixed refusal without calling the model.
// Generation errors surface to the caller unretried.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, results []domain.ScoredPassage, history []domain.Turn) (domain.Answer, error) {
	if len(results) == 0 {
		return domain.Answer{Text: InsufficientInformation}, nil
	}

	kept := s.fitBudget(results)

	passages := make([]promptPassage, len(kept))
	citations := make([]domain.Citation, len(kept))
	for i, sp := range kept {
		docName := sp.Passage.DocID
		if doc, err := s.store.GetDocument(sp.Passage.DocID); err == nil {
			docName = doc.Name
		}
		passages[i] = promptPassage{
			Number:  i + 1,
			DocName: docName,
			Text:    sp.Passage.Text,
		}
		citations[i] = domain.Citation{
			PassageID: sp.Passage.ID,
			DocID:     sp.Passage.DocID,
			DocName:   docName,
			Score:     sp.Score,
		}
	}

	if s.historyTurns < len(history) {
		history = history[len(history)-s.historyTurns:]
	}

	var prompt bytes.Buffer
	err := s.tmpl.Execute(&prompt, promptData{
		Passages: passages,
		History:  history,
		Question: question,
	})
	if err != nil {
		return domain.Answer{}, fmt.Errorf("render prompt: %w", err)
	}

	text, err := s.llm.Complete(ctx, prompt.String())
	if err != nil {
		return domain.Answer{}, err
	}

	return domain.Answer{Text: text, Citations: citations}, nil
}

// fitBudget trims the passage set to the context budget, dropping the
// lowest-ranked passages from the tail first. At least one passage always
// survives, even when it alone exceeds the budget.
func (s *Synthesizer) fitBudget(results []domain.ScoredPassage) []domain.ScoredPassage {
	kept := results
	for len(kept) > 1 {
		total := 0
		for _, sp := range kept {
			total += len([]rune(sp.Passage.Text))
		}
		if total <= s.contextBudget {
			break
		}
		kept = kept[:len(kept)-1]
	}
	return kept
}
