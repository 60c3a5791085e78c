// Package auth collects the OneBot gateway access token from the operator.
package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// PasteToken prompts for the gateway access token and reads one line from
// r. The token is sent as a bearer credential on the WebSocket handshake
// and API posts; an empty line is rejected.
func PasteToken(r io.Reader) (string, error) {
	fmt.Println("Paste the access token configured on your OneBot gateway:")
	fmt.Print("> ")

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return "", errors.New("no input received")
	}

	token := strings.TrimSpace(scanner.Text())
	if token == "" {
		return "", errors.New("token cannot be empty")
	}
	return token, nil
}
