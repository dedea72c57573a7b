// Command ledgerctl verifies evidence ledger files, exports signed
// certificate packages, and pushes exports to the archive.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/sentinelworks/helix-ledger/pkg/archive"
	"github.com/sentinelworks/helix-ledger/pkg/evidence"
	"github.com/sentinelworks/helix-ledger/pkg/export"
	"github.com/sentinelworks/helix-ledger/pkg/ledgerfile"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	if len(os.Args) < 3 {
		usage()
	}

	switch os.Args[1] {
	case "verify":
		runVerify(os.Args[2])
	case "export":
		out := ""
		if len(os.Args) > 3 {
			out = os.Args[3]
		}
		runExport(os.Args[2], out)
	case "push":
		runPush(os.Args[2])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: ledgerctl verify <session.ledger.json>\n"+
		"       ledgerctl export <session.ledger.json> [out.json]\n"+
		"       ledgerctl push <package.json>\n")
	os.Exit(1)
}

func runVerify(path string) {
	f, key := loadLedger(path)

	report := evidence.ChainIntegrity(f.Records, key)
	fmt.Printf("Session:   %s\n", f.SessionID)
	fmt.Printf("Records:   %d\n", report.Length)
	fmt.Printf("Content:   %s\n", chainWord(report.ContentChainValid))
	fmt.Printf("Structure: %s\n", chainWord(report.StructureChainValid))

	if report.Valid {
		fmt.Println("CHAIN VALID — both helices intact.")
		return
	}

	if report.BrokenAt != nil {
		fmt.Printf("CHAIN BROKEN at index %d\n", *report.BrokenAt)
	}
	for _, issue := range report.Issues {
		fmt.Printf("  - %s\n", issue)
	}
	os.Exit(1)
}

func runExport(path, outPath string) {
	f, key := loadLedger(path)

	pkg, err := export.Generate(f.Records, f.SessionID, key)
	if err != nil {
		log.Fatalf("generate package: %v", err)
	}
	data, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		log.Fatalf("marshal package: %v", err)
	}

	if outPath == "" {
		outPath = strings.TrimSuffix(path, ".ledger.json") + ".certificate.json"
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		log.Fatalf("write package: %v", err)
	}

	fmt.Printf("Exported %d records → %s\n", pkg.Length, outPath)
	if !pkg.Report.Valid {
		fmt.Println("WARNING: chain is broken — the report inside the package says where.")
	}
}

func runPush(path string) {
	key := mustKey()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read package: %v", err)
	}
	var pkg export.Package
	if err := json.Unmarshal(data, &pkg); err != nil {
		log.Fatalf("decode package: %v", err)
	}

	ctx := context.Background()
	tp, err := initTracer(ctx)
	if err != nil {
		log.Printf("WARN: OTel tracing disabled: %v", err)
	} else if tp != nil {
		defer tp.Shutdown(ctx)
	}

	cfg, err := archive.LoadConfig(envOr("ARCHIVE_CONFIG", ""))
	if err != nil {
		log.Fatalf("archive config: %v", err)
	}
	if cfg == nil {
		cfg = &archive.Config{
			Endpoint:  envOr("ARCHIVE_ENDPOINT", "localhost:9000"),
			AccessKey: envOr("ARCHIVE_ACCESS_KEY", "minioadmin"),
			SecretKey: envOr("ARCHIVE_SECRET_KEY", "minioadmin"),
			Bucket:    envOr("ARCHIVE_BUCKET", "helix-exports"),
			UseSSL:    envOr("ARCHIVE_USE_SSL", "false") == "true",
		}
	}

	ac, err := archive.New(ctx, *cfg)
	if err != nil {
		log.Fatalf("archive connect: %v", err)
	}

	tracer := otel.Tracer("ledgerctl")
	ctx, span := tracer.Start(ctx, "archive.push")
	ref, err := ac.Store(ctx, &pkg, key)
	span.End()
	if err != nil {
		log.Fatalf("archive push: %v", err)
	}

	fmt.Printf("Pushed:   %s\n", ref.URI)
	fmt.Printf("Session:  %s\n", ref.SessionID)
	fmt.Printf("Checksum: %s\n", ref.Checksum)
	fmt.Printf("Size:     %d bytes\n", ref.Size)
}

func loadLedger(path string) (ledgerfile.File, string) {
	key := mustKey()

	f, err := ledgerfile.Load(path)
	if err != nil {
		log.Fatalf("load ledger: %v", err)
	}
	return f, key
}

func mustKey() string {
	key := os.Getenv("LEDGER_KEY")
	if key == "" {
		log.Fatal("LEDGER_KEY required — the shared secret the ledger was built with")
	}
	return key
}

func initTracer(ctx context.Context) (*sdktrace.TracerProvider, error) {
	endpoint := envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	if endpoint == "" {
		return nil, nil
	}

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName("helix-ledgerctl"),
		semconv.ServiceVersion("0.1.0"),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp, nil
}

func chainWord(valid bool) string {
	if valid {
		return "valid"
	}
	return "BROKEN"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
