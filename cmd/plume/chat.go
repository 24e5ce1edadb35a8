package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/plumedoc/plume"
	"github.com/plumedoc/plume/internal/engine"
	"github.com/plumedoc/plume/pkg/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session in the terminal",
	Long:  `Runs the guided document conversation in the terminal. The completed document is rendered as Markdown when stdout is a terminal.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}

		assembly, err := buildAssembly(cfg, logger, nil)
		if err != nil {
			fmt.Printf("Error initializing plume: %v\n", err)
			os.Exit(1)
		}

		sessionID, _ := cmd.Flags().GetString("session")
		isTTY := term.IsTerminal(int(os.Stdout.Fd()))

		fmt.Println("Plume — assistant de rédaction. Tapez votre demande (Ctrl+D pour quitter).")
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			reply, err := assembly.Engine.Handle(cmd.Context(), sessionID, line)
			if err != nil {
				logger.Error("turn failed", "err", err)
				fmt.Println("Une erreur est survenue, réessayez.")
				continue
			}

			if reply.Done {
				if save, _ := cmd.Flags().GetBool("save"); save {
					if serr := saveDocument(cmd, assembly, sessionID, reply); serr != nil {
						logger.Error("save failed", "err", serr)
						fmt.Println("Le document n'a pas pu être enregistré.")
					}
				}
				if isTTY {
					if rendered, rerr := renderMarkdown(reply.Document); rerr == nil {
						fmt.Println("Voici votre document :")
						fmt.Println(rendered)
						continue
					}
				}
			}
			fmt.Println(reply.Text)
		}
	},
}

// saveDocument persists a completed document back through the template
// store, under the category the session worked in.
func saveDocument(cmd *cobra.Command, assembly *plume.Assembly, sessionID string, reply engine.Reply) error {
	category := reply.Category
	if category == "" {
		category = "Documents"
	}
	desc := domain.TemplateDescriptor{
		Category: category,
		Name:     fmt.Sprintf("%s-%s", sessionID, time.Now().Format("20060102-150405")),
	}
	if err := assembly.Templates.WriteText(cmd.Context(), desc, reply.Document); err != nil {
		return err
	}
	fmt.Printf("Document enregistré dans %s/%s.\n", desc.Category, desc.Name)
	return nil
}

func renderMarkdown(text string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(text)
}

func init() {
	chatCmd.Flags().String("session", "local", "Session identifier")
	chatCmd.Flags().Bool("save", false, "Persist completed documents to the template store")
	rootCmd.AddCommand(chatCmd)
}
