package detector

import (
	"context"
	"fmt"
	"strings"

	translate "cloud.google.com/go/translate"
	"google.golang.org/api/option"
)

// minConfidence is the Cloud Translation confidence below which a
// detection is reported as unknown.
const minConfidence = 0.5

// Cloud detects languages with Google Cloud Translation.
type Cloud struct {
	client *translate.Client
}

// NewCloud connects with credentialsFile, or with application default
// credentials when it is empty.
func NewCloud(ctx context.Context, credentialsFile string) (*Cloud, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &Cloud{client: client}, nil
}

func (c *Cloud) Identify(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	detections, err := c.client.DetectLanguage(ctx, []string{text})
	if err != nil {
		return "", fmt.Errorf("language detection failed: %w", err)
	}
	if len(detections) == 0 || len(detections[0]) == 0 {
		return "", nil
	}

	best := detections[0][0]
	for _, d := range detections[0][1:] {
		if d.Confidence > best.Confidence {
			best = d
		}
	}
	if best.Confidence < minConfidence {
		return "", nil
	}
	base, _ := best.Language.Base()
	return base.String(), nil
}

func (c *Cloud) Close() error {
	return c.client.Close()
}
