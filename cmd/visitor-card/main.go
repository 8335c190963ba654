package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"expo-portal/internal/config"
	"expo-portal/internal/expoapi"
	"expo-portal/internal/kafka"
	"expo-portal/internal/logger"
	"expo-portal/internal/visitors"

	"github.com/joho/godotenv"
)

// exportCard writes the QR PNG, and the card PDF when withPDF is set, for
// visitor id into dir. It returns the written paths.
func exportCard(ctx context.Context, service *visitors.Service, id, dir string, withPDF bool, log *logger.Logger) ([]string, error) {
	result := service.Lookup(ctx, id)
	if !result.Found() {
		for _, a := range result.Attempts {
			log.Warn("VISITOR", fmt.Sprintf("%s: %s", a.Path, a.Err))
		}
		for _, h := range result.Hints {
			log.Info("VISITOR", h)
		}
		return nil, fmt.Errorf("visitor %s: %w", id, result.Err())
	}

	card, err := service.Card(*result.Visitor)
	if err != nil {
		return nil, fmt.Errorf("failed to build card: %w", err)
	}

	png, err := service.QRPNG(id)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR: %w", err)
	}
	qrPath := filepath.Join(dir, card.Code+"-qr.png")
	if err := os.WriteFile(qrPath, png, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", qrPath, err)
	}
	written := []string{qrPath}

	if !withPDF {
		return written, nil
	}
	pdf, err := service.CardPDF(*result.Visitor)
	if err != nil {
		return written, fmt.Errorf("failed to generate card PDF: %w", err)
	}
	pdfPath := filepath.Join(dir, "visitor-card-"+card.Code+".pdf")
	if err := os.WriteFile(pdfPath, pdf, 0o644); err != nil {
		return written, fmt.Errorf("failed to write %s: %w", pdfPath, err)
	}
	return append(written, pdfPath), nil
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	id := flag.String("id", "", "visitor id")
	out := flag.String("out", ".", "output directory")
	font := flag.String("font", cfg.Portal.FontPath, "TTF font for the card PDF")
	withPDF := flag.Bool("pdf", true, "also write the card PDF")
	flag.Parse()

	log := logger.NewLogger()
	defer log.Close()

	if *id == "" {
		log.Fatal("CLI", "-id is required")
	}

	api := expoapi.NewClient(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout}, log)
	service := visitors.NewService(api, cfg.Portal.PublicOrigin, cfg.API.LookupTimeout,
		visitors.NewCardPDFGenerator(*font, "ECAMEX26"), kafka.NoopPublisher{}, log)

	written, err := exportCard(context.Background(), service, *id, *out, *withPDF, log)
	for _, path := range written {
		log.Info("CLI", "wrote "+path)
	}
	if err != nil {
		log.Fatal("CLI", err.Error())
	}
}
