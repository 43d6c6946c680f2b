// Command-line interface for the atelier component generator
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"atelier/atelier/client"
	"atelier/atelier/utils/color"
	"atelier/atelier/utils/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()

	baseURL := os.Getenv("ATELIER_SERVER")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	api := client.NewAPI(baseURL)
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println()
	fmt.Println(color.ColorPrompt("atelier") + " — describe a React component, get TSX + CSS back.")
	fmt.Println("Server:", baseURL)
	fmt.Println()

	if !authenticate(api, scanner) {
		os.Exit(1)
	}

	session := client.NewSession(api)

	fmt.Println()
	fmt.Println("You can:")
	fmt.Println("  - Describe the component you want (e.g. 'a pricing card with a CTA button')")
	fmt.Println("  - Keep talking to refine it; edits apply to the current code")
	fmt.Println()
	fmt.Println("Commands: sessions | open <id> | new | name <title> | show | export | exit")
	fmt.Println()

	for {
		fmt.Print(color.ColorPrompt("atelier> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		handleLine(api, session, line)
	}

	// flush any pending auto-save before the process goes away
	session.WaitSaves()
	fmt.Println("Goodbye!")
}

func handleLine(api *client.API, session *client.Session, line string) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	fields := strings.Fields(line)
	switch fields[0] {
	case "sessions":
		listSessions(ctx, api)
	case "open":
		if len(fields) < 2 {
			fmt.Println(color.ColorWarning("usage: open <session-id>"))
			return
		}
		openSession(ctx, api, session, fields[1])
	case "new":
		session.StartNew()
		fmt.Println(color.ColorInfo("Started a fresh session."))
	case "name":
		if len(fields) < 2 {
			fmt.Println(color.ColorWarning("usage: name <title>"))
			return
		}
		session.SetName(strings.TrimSpace(strings.TrimPrefix(line, "name")))
		fmt.Println(color.ColorInfo("Renamed to " + session.Name()))
	case "show":
		showCode(session)
	case "export":
		exportCode(session)
	default:
		ask(ctx, session, line)
	}
}

func authenticate(api *client.API, scanner *bufio.Scanner) bool {
	for {
		fmt.Print("login or register? ")
		if !scanner.Scan() {
			return false
		}
		mode := strings.TrimSpace(scanner.Text())
		if mode != "login" && mode != "register" {
			fmt.Println(color.ColorWarning("type 'login' or 'register'"))
			continue
		}

		fmt.Print("email: ")
		if !scanner.Scan() {
			return false
		}
		email := strings.TrimSpace(scanner.Text())

		fmt.Print("password: ")
		if !scanner.Scan() {
			return false
		}
		password := strings.TrimSpace(scanner.Text())

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		var err error
		if mode == "register" {
			_, err = api.Register(ctx, email, password)
		} else {
			_, err = api.Login(ctx, email, password)
		}
		cancel()
		if err != nil {
			fmt.Println(color.ColorError("auth failed: " + err.Error()))
			continue
		}
		fmt.Println(color.ColorSuccess("Signed in as " + email))
		return true
	}
}

func ask(ctx context.Context, session *client.Session, text string) {
	fmt.Println(color.ColorInfo("Generating..."))
	if _, err := session.Ask(ctx, text); err != nil {
		logging.ErrorLogger.Error("generation failed", zap.Error(err))
		fmt.Println(color.ColorError("generation failed: " + err.Error()))
		return
	}
	fmt.Println(color.ColorSuccess("Done.") + " 'show' prints the code, 'export' writes it to files.")
}

func listSessions(ctx context.Context, api *client.API) {
	summaries, err := api.ListSessions(ctx)
	if err != nil {
		fmt.Println(color.ColorError("could not list sessions: " + err.Error()))
		return
	}
	if len(summaries) == 0 {
		fmt.Println("No saved sessions yet.")
		return
	}
	for _, s := range summaries {
		fmt.Printf("  %s  %s  (%s)\n", s.ID, s.Name, s.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func openSession(ctx context.Context, api *client.API, session *client.Session, raw string) {
	id, err := uuid.Parse(raw)
	if err != nil {
		fmt.Println(color.ColorWarning("not a session id: " + raw))
		return
	}
	record, err := api.SessionDetails(ctx, id)
	if err != nil {
		fmt.Println(color.ColorError("could not open session: " + err.Error()))
		return
	}
	session.Load(record)
	fmt.Println(color.ColorSuccess("Opened " + record.Name))
	for _, msg := range record.ChatHistory {
		fmt.Printf("  [%s] %s\n", msg.Role, msg.Content)
	}
}

func showCode(session *client.Session) {
	code := session.Code()
	fmt.Println(color.ColorInfo("--- component.tsx ---"))
	fmt.Println(color.ColorCode(code.TSX))
	fmt.Println(color.ColorInfo("--- component.css ---"))
	fmt.Println(color.ColorCode(code.CSS))
}

func exportCode(session *client.Session) {
	code := session.Code()
	if code.IsPlaceholder() {
		fmt.Println(color.ColorWarning("Nothing to export yet."))
		return
	}
	if err := os.WriteFile("component.tsx", []byte(code.TSX), 0o644); err != nil {
		fmt.Println(color.ColorError("export failed: " + err.Error()))
		return
	}
	if err := os.WriteFile("component.css", []byte(code.CSS), 0o644); err != nil {
		fmt.Println(color.ColorError("export failed: " + err.Error()))
		return
	}
	fmt.Println(color.ColorSuccess("Wrote component.tsx and component.css"))
}
