package speech

import (
	"errors"
	"net/http"
	"strings"

	"github.com/hallikerijaved/CareGpt/internal/model/speech"
)

var errMissingCredentials = errors.New("speech config is missing AppID or AccessToken")

// authHeader builds the openspeech authentication headers.
func authHeader(cfg *speech.Config, resourceID, connectID string) (http.Header, error) {
	if cfg == nil {
		return nil, errors.New("speech config is not initialised")
	}

	appID := strings.TrimSpace(cfg.AppID)
	token := strings.TrimSpace(cfg.AccessToken)
	if appID == "" || token == "" {
		return nil, errMissingCredentials
	}

	header := http.Header{}
	header.Set("X-Api-App-Key", appID)
	header.Set("X-Api-Access-Key", token)
	header.Set("X-Api-Resource-Id", resourceID)
	header.Set("X-Api-Connect-Id", connectID)
	return header, nil
}
