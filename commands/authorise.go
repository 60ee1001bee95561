package commands

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var AuthoriseCmd = Authorise{
	command: command{
		workdir:     "",
		credentials: "",
		debug:       false,
	},
	port: 8086,
}

type Authorise struct {
	command
	port int
}

func (cmd *Authorise) Name() string {
	return "authorise"
}

func (cmd *Authorise) Description() string {
	return "Authorises access to Google Drive, Sheets and Cloud Storage with OAuth2 client credentials"
}

func (cmd *Authorise) Usage() string {
	return "--credentials <file>"
}

func (cmd *Authorise) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] authorise [options] --credentials <file>\n", APP)
	fmt.Println()
	fmt.Println("  Runs the OAuth2 consent flow for a 'desktop' OAuth2 client and saves the token in the")
	fmt.Println("  working directory. Not required for service account credentials.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s authorise --credentials \"client_secret.json\"\n", APP)
	fmt.Println()
}

func (cmd *Authorise) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("authorise", flag.ExitOnError)

	flagset.StringVar(&cmd.workdir, "workdir", cmd.workdir, "Directory for working files (tokens, etc)")
	flagset.StringVar(&cmd.credentials, "credentials", cmd.credentials, "OAuth2 client credentials file")
	flagset.IntVar(&cmd.port, "port", cmd.port, "Local port for the OAuth2 redirect")

	return flagset
}

func (cmd *Authorise) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

	credentials := credentialsFile(cmd.credentials)
	if strings.TrimSpace(credentials) == "" {
		return fmt.Errorf("--credentials is a required option")
	}

	ctx, cancel := interruptible()
	defer cancel()

	tokens := tokensFile(credentials, workdirPath(cmd.workdir))
	if err := authenticate(ctx, credentials, tokens, cmd.port); err != nil {
		return fmt.Errorf("authorisation error (%w)", err)
	}

	infof("saved OAuth2 token to %v", tokens)

	return nil
}

func authenticate(ctx context.Context, credentials, tokens string, port int) error {
	b, err := os.ReadFile(credentials)
	if err != nil {
		return err
	}

	config, err := google.ConfigFromJSON(b, SHEETS, DRIVE, STORAGE)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return err
	}

	config.RedirectURL = fmt.Sprintf("http://localhost:%d/", port)

	state := fmt.Sprintf("%s-%d", APP, os.Getpid())
	authorised := make(chan string, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, rq *http.Request) {
		if rq.FormValue("state") != state || rq.FormValue("code") == "" {
			http.Error(w, "Invalid authorisation response", http.StatusBadRequest)
			return
		}

		fmt.Fprintf(w, "%s is authorised - you can close this window", APP)

		select {
		case authorised <- rq.FormValue("code"):
		default:
		}
	})

	srv := &http.Server{
		Handler: mux,
	}

	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			warnf("%v", err)
		}
	}()

	defer srv.Shutdown(context.Background())

	url := config.AuthCodeURL(state, oauth2.AccessTypeOffline)

	fmt.Println()
	fmt.Println("  Open the following link in your browser to authorise access:")
	fmt.Println()
	fmt.Printf("    %v\n", url)
	fmt.Println()

	if err := browse(url); err != nil {
		debugf("could not open browser (%v)", err)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("cancelled")

	case code := <-authorised:
		token, err := config.Exchange(ctx, code)
		if err != nil {
			return fmt.Errorf("unable to retrieve token (%w)", err)
		}

		return saveToken(tokens, token)
	}
}

func browse(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
