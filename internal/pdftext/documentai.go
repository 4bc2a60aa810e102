package pdftext

import (
	"context"
	"fmt"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// DocumentAIConfig names the processor used for OCR-capable extraction.
type DocumentAIConfig struct {
	ProjectID        string
	Location         string // Default: "us"
	ProcessorID      string
	ProcessorVersion string
	CredentialsFile  string // Empty uses application default credentials.
}

// ProcessorName returns the fully qualified processor resource name, or ""
// when the config is incomplete.
func (c DocumentAIConfig) ProcessorName() string {
	project := strings.TrimSpace(c.ProjectID)
	location := strings.TrimSpace(c.Location)
	processor := strings.TrimSpace(c.ProcessorID)
	if project == "" || location == "" || processor == "" {
		return ""
	}
	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s", project, location, processor)
	if v := strings.TrimSpace(c.ProcessorVersion); v != "" {
		name += "/processorVersions/" + v
	}
	return name
}

type processFunc func(ctx context.Context, req *documentaipb.ProcessRequest) (*documentaipb.ProcessResponse, error)

// DocumentAIExtractor sends the PDF to a Google Document AI processor. It
// handles scanned lessons that have no text layer.
type DocumentAIExtractor struct {
	name    string
	process processFunc
	close   func() error
}

func NewDocumentAIExtractor(ctx context.Context, cfg DocumentAIConfig) (*DocumentAIExtractor, error) {
	if cfg.Location == "" {
		cfg.Location = "us"
	}
	name := cfg.ProcessorName()
	if name == "" {
		return nil, fmt.Errorf("document AI project and processor ID are required")
	}

	opts := []option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)),
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}

	return &DocumentAIExtractor{
		name: name,
		process: func(ctx context.Context, req *documentaipb.ProcessRequest) (*documentaipb.ProcessResponse, error) {
			return client.ProcessDocument(ctx, req)
		},
		close: client.Close,
	}, nil
}

func (*DocumentAIExtractor) Name() string { return "documentai" }

func (d *DocumentAIExtractor) Extract(ctx context.Context, data []byte) (*Result, error) {
	if !IsPDF(data) {
		return nil, ErrNotPDF
	}

	resp, err := d.process(ctx, &documentaipb.ProcessRequest{
		Name: d.name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: "application/pdf",
			},
		},
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: documentai ProcessDocument: %v", ErrUnavailable, err)
	}
	if resp == nil || resp.GetDocument() == nil {
		return nil, ErrEmptyOrUnreadable
	}

	doc := resp.GetDocument()
	return newResult(doc.GetText(), len(doc.GetPages()))
}

// Close releases the underlying client.
func (d *DocumentAIExtractor) Close() error {
	if d.close == nil {
		return nil
	}
	return d.close()
}
