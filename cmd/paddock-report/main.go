// 离线报表工具：读取 GeoJSON 文件，输出与 /upload 相同结构的 JSON 报表或 XLSX 工作簿
// 用法：paddock-report <in.geojson> [out.json|out.xlsx]；也可通过 REPORT_IN / REPORT_OUT 指定
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"paddock-api/internal/analyser"
	"paddock-api/internal/export"
	"paddock-api/internal/logger"
	"paddock-api/internal/report"
)

func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()

	in := os.Getenv("REPORT_IN")
	out := os.Getenv("REPORT_OUT")
	if len(os.Args) > 1 {
		in = os.Args[1]
	}
	if len(os.Args) > 2 {
		out = os.Args[2]
	}
	if in == "" {
		fmt.Fprintln(os.Stderr, "usage: paddock-report <in.geojson> [out.json|out.xlsx]")
		os.Exit(2)
	}
	if err := run(in, out); err != nil {
		l.Error("report_failed", "in", in, "err", err)
		os.Exit(1)
	}
	l.Info("report_done", "in", in, "out", out)
}

func run(in, out string) error {
	b, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	fc, err := analyser.DecodeCollection(b)
	if err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(in), err)
	}
	rep, err := analyser.Analyse(fc)
	if err != nil {
		return err
	}
	resp := report.FromAnalysis(rep)

	var data []byte
	if strings.EqualFold(filepath.Ext(out), ".xlsx") {
		data, err = export.Workbook(resp)
	} else {
		data, err = json.MarshalIndent(resp, "", "  ")
	}
	if err != nil {
		return err
	}
	if out == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(out, data, 0o644)
}
