package engine

import (
	"fmt"
	"strings"

	"github.com/plumedoc/plume/pkg/domain"
)

// Canned texts of the guided flow. Deterministic so the tests (and the
// presentation layer) can rely on them.
const (
	msgGreeting     = "Bonjour ! Je vous aide à préparer un document."
	msgAck          = "Très bien."
	msgRefuseAck    = "D'accord, rien n'est engagé."
	msgStopped      = "La session a été réinitialisée. À bientôt !"
	msgHelp         = "Je vous guide étape par étape : choisissez une catégorie, un modèle, puis je remplis le document avec les informations du client. Dites « retour » pour revenir en arrière ou « annuler » pour tout recommencer."
	msgTurnFailed   = "Une erreur interne est survenue, votre progression est conservée. Reformulez votre demande."
	msgNoCategories = "Aucune catégorie de documents n'est disponible pour le moment."
	msgNoModels     = "Aucun modèle n'est disponible dans cette catégorie."
	msgReadFailed   = "Impossible de lire ce modèle. Choisissez-en un autre."
)

func promptDocumentType() string {
	return "Que souhaitez-vous faire ?\n1. Utiliser un modèle existant\n2. Créer un nouveau document"
}

func promptCategories(categories []string) string {
	var sb strings.Builder
	sb.WriteString("Voici les catégories disponibles :\n")
	writeNumbered(&sb, categories)
	sb.WriteString("Indiquez un numéro ou un nom de catégorie.")
	return sb.String()
}

func promptModels(category string, models []domain.TemplateDescriptor) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Modèles de la catégorie « %s » :\n", category)
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	writeNumbered(&sb, names)
	sb.WriteString("Indiquez un numéro ou un nom de modèle.")
	return sb.String()
}

func promptModelMenu(templateName string) string {
	return fmt.Sprintf("Modèle « %s » sélectionné. Que souhaitez-vous faire ?\n1. Remplir avec un client\n2. Utiliser le modèle tel quel\n3. Voir un aperçu du document", templateName)
}

func promptClientSearch() string {
	return "Pour quel client ? Donnez un nom, une entreprise ou un email."
}

func promptClientCandidates(candidates []domain.ClientRecord) string {
	var sb strings.Builder
	sb.WriteString("Plusieurs clients correspondent :\n")
	labels := make([]string, len(candidates))
	for i, c := range candidates {
		labels[i] = c.Label()
	}
	writeNumbered(&sb, labels)
	sb.WriteString("Indiquez le numéro du client.")
	return sb.String()
}

func promptClientNotFound(query string) string {
	return fmt.Sprintf("Aucun client ne correspond à « %s ».\n1. Créer ce client\n2. Chercher à nouveau\n3. Continuer sans client", query)
}

func promptCreatingClient() string {
	return "Décrivez le client : nom ; entreprise ; email ; téléphone ; adresse (seul le nom est obligatoire)."
}

func promptMissingVariable(name string) string {
	return fmt.Sprintf("Quelle valeur pour « %s » ?", name)
}

func promptCreatingNew() string {
	return "Décrivez le contenu de votre document, une idée par message. Dites « terminer » quand vous avez fini."
}

func promptCompleted(finalText string) string {
	return "Voici votre document :\n\n" + finalText + "\n\nLe document est prêt. La conversation repart de zéro au prochain message."
}

func writeNumbered(sb *strings.Builder, items []string) {
	for i, item := range items {
		fmt.Fprintf(sb, "%d. %s\n", i+1, item)
	}
}

// stateReminder is appended to fallback answers so a side question does not
// derail the flow.
func stateReminder(state domain.DialogueState) string {
	switch state {
	case domain.StateAskingDocumentType:
		return "Pour reprendre : souhaitez-vous un modèle existant (1) ou un nouveau document (2) ?"
	case domain.StateChoosingCategory:
		return "Pour reprendre : indiquez la catégorie de document souhaitée."
	case domain.StateChoosingModel:
		return "Pour reprendre : indiquez le modèle souhaité."
	case domain.StateModelSelected:
		return "Pour reprendre : remplir avec un client (1), utiliser tel quel (2) ou voir un aperçu (3) ?"
	case domain.StateAskingClient:
		return "Pour reprendre : pour quel client préparons-nous ce document ?"
	case domain.StateChoosingClient:
		return "Pour reprendre : indiquez le numéro du client."
	case domain.StateClientNotFound:
		return "Pour reprendre : créer le client (1), chercher à nouveau (2) ou continuer sans client (3) ?"
	case domain.StateCreatingClient:
		return "Pour reprendre : décrivez le client à créer."
	case domain.StateFillingDocument, domain.StateFillingMissing:
		return "Pour reprendre : donnez la valeur demandée pour compléter le document."
	case domain.StateCreatingNew:
		return "Pour reprendre : continuez à décrire votre document, ou dites « terminer »."
	}
	return "Pour reprendre : dites-moi quel document vous souhaitez préparer."
}
