package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsight/docsight/internal/domain/analysis"
	"github.com/docsight/docsight/internal/domain/annotation"
	"github.com/docsight/docsight/internal/domain/segment"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/logging"
	apperrors "github.com/docsight/docsight/pkg/errors"
)

// resultFile is the on-disk shape of an analysis result, matching the
// document binding request of the HTTP surface.
type resultFile struct {
	PrimaryID    string          `json:"id"`
	AlternateID  string          `json:"document_id"`
	Filename     string          `json:"filename"`
	DocumentText string          `json:"document_text"`
	Analysis     json.RawMessage `json:"analysis"`
	AnalyzedAt   time.Time       `json:"analyzed_at"`
}

// loadResult reads and parses an analysis result file.  A degraded payload
// is reported on stderr and processing continues with empty findings.
func loadResult(path string) (*analysis.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeBadRequest, "cannot read %s", path)
	}

	var rf resultFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeBadRequest, "malformed result file %s", path)
	}

	payload, err := analysis.ParsePayload(rf.Analysis)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: analysis payload degraded: %v\n", err)
	}
	return &analysis.Result{
		PrimaryID:    rf.PrimaryID,
		AlternateID:  rf.AlternateID,
		Filename:     rf.Filename,
		DocumentText: rf.DocumentText,
		Analysis:     payload,
		AnalyzedAt:   rf.AnalyzedAt,
	}, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newResolveCommand indexes a result file into positioned annotations.
func newResolveCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the findings of an analysis result into positioned annotations",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadResult(file)
			if err != nil {
				return err
			}
			anns := annotation.NewIndexer(logging.NewNopLogger()).Index(res)
			return printJSON(cmd, map[string]interface{}{
				"key":         firstKey(res),
				"annotations": anns,
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "analysis result JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// newSegmentCommand renders a result file into highlight segments.
func newSegmentCommand() *cobra.Command {
	var (
		file   string
		active string
	)

	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Render an analysis result into alternating plain and highlight segments",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadResult(file)
			if err != nil {
				return err
			}
			anns := annotation.NewIndexer(logging.NewNopLogger()).Index(res)
			segs := segment.Build(res.DocumentText, anns, active)
			return printJSON(cmd, map[string]interface{}{
				"key":      firstKey(res),
				"segments": segs,
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "analysis result JSON file")
	cmd.Flags().StringVar(&active, "active", "", "annotation id to mark active")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func firstKey(res *analysis.Result) string {
	key, _ := res.IdentityKey()
	return key
}
