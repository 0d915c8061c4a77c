package imagery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/smart-field/smart-field-api-poc/internal/properties"
	"golang.org/x/oauth2/clientcredentials"
)

const downloadRetries = 5

var retryDelay = 5 * time.Second

// Download fetches one orthomosaic from the imagery API using OAuth2
// client credentials and saves it under data/orthomosaics. The API
// serves finished mosaics by field name, so this is a plain GET with
// retries for the processing window right after a flight.
func Download(ctx context.Context, fieldName string) (string, error) {
	apiUrl := properties.ImageryApiUrl()
	clientId := properties.ImageryClientId()
	clientSecret := properties.ImageryClientSecret()
	tokenUrl := properties.ImageryTokenUrl()
	if apiUrl == "" || clientId == "" || clientSecret == "" || tokenUrl == "" {
		return "", fmt.Errorf("missing required environment variables: IMAGERY_API_URL, IMAGERY_CLIENT_ID, IMAGERY_CLIENT_SECRET, or IMAGERY_TOKEN_URL")
	}

	config := &clientcredentials.Config{
		ClientID:     clientId,
		ClientSecret: clientSecret,
		TokenURL:     tokenUrl,
	}
	httpClient := config.Client(ctx)

	url := fmt.Sprintf("%s/orthomosaics/%s", apiUrl, fieldName)
	body, err := fetchWithRetries(ctx, httpClient, url)
	if err != nil {
		return "", err
	}

	outputDir := filepath.Join(properties.RootPath(), "data", "orthomosaics")
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return "", err
	}
	outputPath := filepath.Join(outputDir, fieldName+".tif")
	if err := os.WriteFile(outputPath, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to save orthomosaic: %w", err)
	}
	return outputPath, nil
}

// fetchWithRetries retries the download with a fixed delay between
// attempts. The delay is skipped after the last attempt, and waiting
// stops as soon as the context is canceled.
func fetchWithRetries(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	var body []byte
	var err error
	for attempt := 1; attempt <= downloadRetries; attempt++ {
		body, err = fetch(ctx, client, url)
		if err == nil {
			return body, nil
		}
		fmt.Printf("Attempt %d failed: %v\n", attempt, err)
		if attempt == downloadRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, fmt.Errorf("failed to download orthomosaic after %d attempts: %w", downloadRetries, err)
}

func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("unauthorized access, check your client ID and secret")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}
