package engine

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/plumedoc/plume/pkg/domain"
)

// handleState runs the current state's handler. The boolean reports whether
// the input matched a structural expectation of the state; unmatched turns
// re-render the current prompt unchanged.
func (e *Engine) handleState(ctx context.Context, conv *domain.ConversationContext, in turnInput) (string, bool, error) {
	switch conv.State {
	case domain.StateInitial, domain.StateAskingDocumentType:
		return e.handleDocumentType(ctx, conv, in)
	case domain.StateChoosingCategory:
		return e.handleChoosingCategory(ctx, conv, in)
	case domain.StateChoosingModel:
		return e.handleChoosingModel(ctx, conv, in)
	case domain.StateModelSelected:
		return e.handleModelSelected(ctx, conv, in)
	case domain.StateAskingClient:
		return e.handleAskingClient(ctx, conv, in)
	case domain.StateChoosingClient:
		return e.handleChoosingClient(ctx, conv, in)
	case domain.StateClientNotFound:
		return e.handleClientNotFound(ctx, conv, in)
	case domain.StateCreatingClient:
		return e.handleCreatingClient(ctx, conv, in)
	case domain.StateFillingDocument, domain.StateFillingMissing:
		return e.handleFillingMissing(conv, in)
	case domain.StateCreatingNew:
		return e.handleCreatingNew(ctx, conv, in)
	}
	return "", false, fmt.Errorf("%w: unknown state %q", errInvariant, conv.State)
}

// handleDocumentType covers Initial and AskingDocumentType: route to the
// existing-template flow or the free-form flow.
func (e *Engine) handleDocumentType(ctx context.Context, conv *domain.ConversationContext, in turnInput) (string, bool, error) {
	n := in.normalized
	switch {
	case n == "1" || strings.Contains(n, "modele") || strings.Contains(n, "existant"):
		cats, err := e.catalog.Categories(ctx)
		if err != nil {
			e.logger.Warn("listing categories failed", "err", err)
			return msgNoCategories, true, nil
		}
		if len(cats) == 0 {
			return msgNoCategories, true, nil
		}
		if err := e.transition(conv, domain.StateChoosingCategory); err != nil {
			return e.rePrompt(ctx, conv), true, nil
		}
		return promptCategories(cats), true, nil

	case n == "2" || strings.Contains(n, "nouveau"):
		if err := e.transition(conv, domain.StateCreatingNew); err != nil {
			return e.rePrompt(ctx, conv), true, nil
		}
		return promptCreatingNew(), true, nil
	}

	if conv.State == domain.StateInitial && n != "" {
		// Any opening request lands on the type menu.
		if err := e.transition(conv, domain.StateAskingDocumentType); err != nil {
			return promptDocumentType(), true, nil
		}
		return promptDocumentType(), true, nil
	}
	return promptDocumentType(), false, nil
}

func (e *Engine) handleChoosingCategory(ctx context.Context, conv *domain.ConversationContext, in turnInput) (string, bool, error) {
	cats, err := e.catalog.Categories(ctx)
	if err != nil {
		e.logger.Warn("listing categories failed", "err", err)
		return msgNoCategories, true, nil
	}
	chosen, ok := e.pickOne(in, cats)
	if !ok {
		return e.rePrompt(ctx, conv), false, nil
	}

	models, err := e.catalog.Models(ctx, chosen)
	if err != nil {
		e.logger.Warn("listing models failed", "category", chosen, "err", err)
		return msgNoModels + "\n\n" + promptCategories(cats), true, nil
	}
	if len(models) == 0 {
		// Empty category and unknown category read the same here.
		return msgNoModels + "\n\n" + promptCategories(cats), true, nil
	}

	conv.Category = chosen
	if err := e.transition(conv, domain.StateChoosingModel); err != nil {
		return e.rePrompt(ctx, conv), true, nil
	}
	return promptModels(chosen, models), true, nil
}

func (e *Engine) handleChoosingModel(ctx context.Context, conv *domain.ConversationContext, in turnInput) (string, bool, error) {
	models, err := e.catalog.Models(ctx, conv.Category)
	if err != nil || len(models) == 0 {
		return msgNoModels, true, nil
	}
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	chosen, ok := e.pickOne(in, names)
	if !ok {
		return e.rePrompt(ctx, conv), false, nil
	}
	idx := slices.Index(names, chosen)
	desc := models[idx]

	text, err := e.templates.ReadText(ctx, desc)
	if err != nil {
		e.logger.Warn("reading template failed", "template", desc.Name, "err", err)
		return msgReadFailed + "\n\n" + promptModels(conv.Category, models), true, nil
	}

	conv.TemplateName = desc.Name
	conv.TemplatePath = desc.Path
	conv.TemplateText = text
	if err := e.transition(conv, domain.StateModelSelected); err != nil {
		return e.rePrompt(ctx, conv), true, nil
	}
	return promptModelMenu(desc.Name), true, nil
}

func (e *Engine) handleModelSelected(ctx context.Context, conv *domain.ConversationContext, in turnInput) (string, bool, error) {
	n := in.normalized
	switch {
	case n == "1" || strings.Contains(n, "remplir"):
		if conv.Client != nil {
			return e.startFilling(conv)
		}
		if err := e.transition(conv, domain.StateAskingClient); err != nil {
			return e.rePrompt(ctx, conv), true, nil
		}
		return promptClientSearch(), true, nil

	case n == "2" || strings.Contains(n, "utiliser") || strings.Contains(n, "tel quel"):
		return e.complete(conv, conv.TemplateText)

	case n == "3" || strings.Contains(n, "apercu"):
		return "Aperçu du modèle :\n\n" + conv.TemplateText + "\n\n" + promptModelMenu(conv.TemplateName), true, nil
	}
	return e.rePrompt(ctx, conv), false, nil
}

// handleAskingClient treats the whole input as a search query.
func (e *Engine) handleAskingClient(ctx context.Context, conv *domain.ConversationContext, in turnInput) (string, bool, error) {
	query := strings.TrimSpace(in.raw)
	if query == "" {
		return promptClientSearch(), false, nil
	}
	conv.LastClientQuery = query

	matches, err := e.clients.Search(ctx, query)
	if err != nil {
		e.logger.Warn("client search failed", "err", err)
		return "La recherche de clients a échoué. " + promptClientSearch(), true, nil
	}

	switch len(matches) {
	case 0:
		if err := e.transition(conv, domain.StateClientNotFound); err != nil {
			return e.rePrompt(ctx, conv), true, nil
		}
		return promptClientNotFound(query), true, nil
	case 1:
		client := matches[0]
		conv.Client = &client
		if err := e.transition(conv, domain.StateModelSelected); err != nil {
			return e.rePrompt(ctx, conv), true, nil
		}
		// The user already chose to fill; go straight on.
		return e.startFilling(conv)
	default:
		conv.Candidates = matches
		if err := e.transition(conv, domain.StateChoosingClient); err != nil {
			return e.rePrompt(ctx, conv), true, nil
		}
		return promptClientCandidates(matches), true, nil
	}
}

func (e *Engine) handleChoosingClient(ctx context.Context, conv *domain.ConversationContext, in turnInput) (string, bool, error) {
	idx, ok := indexChoice(in.normalized, len(conv.Candidates))
	if !ok {
		return e.rePrompt(ctx, conv), false, nil
	}
	// Candidates stay in the context: they are this state's input, and a
	// later "retour" must be able to re-render the list.
	client := conv.Candidates[idx]
	conv.Client = &client
	if err := e.transition(conv, domain.StateModelSelected); err != nil {
		return e.rePrompt(ctx, conv), true, nil
	}
	return e.startFilling(conv)
}

func (e *Engine) handleClientNotFound(ctx context.Context, conv *domain.ConversationContext, in turnInput) (string, bool, error) {
	switch in.normalized {
	case "1":
		if err := e.transition(conv, domain.StateCreatingClient); err != nil {
			return e.rePrompt(ctx, conv), true, nil
		}
		return promptCreatingClient(), true, nil
	case "2":
		if err := e.transition(conv, domain.StateAskingClient); err != nil {
			return e.rePrompt(ctx, conv), true, nil
		}
		return promptClientSearch(), true, nil
	case "3":
		if err := e.transition(conv, domain.StateModelSelected); err != nil {
			return e.rePrompt(ctx, conv), true, nil
		}
		return "Nous continuons sans client. " + promptModelMenu(conv.TemplateName), true, nil
	}
	return promptClientNotFound(conv.LastClientQuery), false, nil
}

// handleCreatingClient parses "nom ; entreprise ; email ; téléphone ;
// adresse" with only the name mandatory, stores the record and resumes the
// filling flow.
func (e *Engine) handleCreatingClient(ctx context.Context, conv *domain.ConversationContext, in turnInput) (string, bool, error) {
	record := parseClient(in.raw)
	if record.Name == "" {
		return promptCreatingClient(), false, nil
	}
	if err := e.clients.Create(ctx, record); err != nil {
		// The record still serves this session even if persisting it failed.
		e.logger.Warn("client creation failed", "err", err)
	}
	conv.Client = &record
	if err := e.transition(conv, domain.StateModelSelected); err != nil {
		return e.rePrompt(ctx, conv), true, nil
	}
	return e.startFilling(conv)
}

func parseClient(raw string) domain.ClientRecord {
	parts := strings.Split(raw, ";")
	get := func(i int) string {
		if i < len(parts) {
			return strings.TrimSpace(parts[i])
		}
		return ""
	}
	return domain.ClientRecord{
		Name:    get(0),
		Company: get(1),
		Email:   get(2),
		Phone:   get(3),
		Address: get(4),
	}
}

// startFilling detects placeholders, binds what the client record covers and
// either asks for the first gap or finalizes immediately.
func (e *Engine) startFilling(conv *domain.ConversationContext) (string, bool, error) {
	if err := e.transition(conv, domain.StateFillingDocument); err != nil {
		return stateReminder(conv.State), true, nil
	}
	placeholders := e.binder.DetectPlaceholders(conv.TemplateText)
	var client domain.ClientRecord
	if conv.Client != nil {
		client = *conv.Client
	}
	bound, missing := e.binder.Bind(placeholders, client)
	conv.BoundVariables = bound
	conv.MissingVariables = missing

	if len(missing) == 0 {
		return e.complete(conv, e.binder.Substitute(conv.TemplateText, bound))
	}
	if err := e.transition(conv, domain.StateFillingMissing); err != nil {
		return stateReminder(conv.State), true, nil
	}
	return fmt.Sprintf("Il manque %d information(s).\n%s", len(missing), promptMissingVariable(missing[0])), true, nil
}

// handleFillingMissing consumes one answer per turn, in detection order.
func (e *Engine) handleFillingMissing(conv *domain.ConversationContext, in turnInput) (string, bool, error) {
	if len(conv.MissingVariables) == 0 {
		return "", false, fmt.Errorf("%w: filling state with no missing variables", errInvariant)
	}
	name := conv.MissingVariables[0]
	if !slices.Contains(e.binder.DetectPlaceholders(conv.TemplateText), name) {
		return "", false, fmt.Errorf("%w: missing variable %q not present in template", errInvariant, name)
	}

	value := strings.TrimSpace(in.raw)
	if value == "" {
		return promptMissingVariable(name), false, nil
	}

	e.binder.ResolveMissing(conv, name, value)

	if len(conv.MissingVariables) > 0 {
		return promptMissingVariable(conv.MissingVariables[0]), true, nil
	}
	return e.complete(conv, e.binder.Substitute(conv.TemplateText, conv.BoundVariables))
}

// handleCreatingNew accumulates free-form notes until "terminer".
func (e *Engine) handleCreatingNew(ctx context.Context, conv *domain.ConversationContext, in turnInput) (string, bool, error) {
	if strings.Contains(in.normalized, "terminer") {
		if len(conv.FreeFormNotes) == 0 {
			return "Je n'ai encore rien à assembler. " + promptCreatingNew(), true, nil
		}
		text := strings.Join(conv.FreeFormNotes, "\n\n")
		if d, ok := e.responder.(drafter); ok {
			if drafted, ok := d.Draft(ctx, conv.FreeFormNotes); ok {
				text = drafted
			}
		}
		return e.complete(conv, text)
	}

	note := strings.TrimSpace(in.raw)
	if note == "" {
		return promptCreatingNew(), false, nil
	}
	conv.FreeFormNotes = append(conv.FreeFormNotes, note)
	return "Noté. Continuez, ou dites « terminer » pour assembler le document.", true, nil
}

// complete finalizes the document and moves to DocumentCompleted.
func (e *Engine) complete(conv *domain.ConversationContext, finalText string) (string, bool, error) {
	if err := e.transition(conv, domain.StateDocumentCompleted); err != nil {
		return stateReminder(conv.State), true, nil
	}
	conv.FinalText = finalText
	return promptCompleted(finalText), true, nil
}

// pickOne resolves a user choice against a candidate list, by index first,
// then by fuzzy name match.
func (e *Engine) pickOne(in turnInput, candidates []string) (string, bool) {
	if idx, ok := indexChoice(in.normalized, len(candidates)); ok {
		return candidates[idx], true
	}
	match := e.normalizer.CorrectTypo(in.raw, candidates)
	if slices.Contains(candidates, match) {
		return match, true
	}
	return "", false
}

// indexChoice parses a 1-based menu index.
func indexChoice(normalized string, n int) (int, bool) {
	v, err := strconv.Atoi(normalized)
	if err != nil || v < 1 || v > n {
		return 0, false
	}
	return v - 1, true
}
