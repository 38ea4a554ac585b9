package reportstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/John-Robertt/ImagingTriage/internal/domain"
	"github.com/John-Robertt/ImagingTriage/internal/infra/fsx"
)

// DirName 是报告目录名（位于扫描根目录下；以点开头，scan 会忽略它）。
const DirName = ".triage"

// LatestName 是最近一次运行报告的文件名（不区分 sort/gather）。
const LatestName = "report.json"

// Store 提供 <root>/.triage/ 下运行报告的读写。
//
// 约束：
// - dry-run：只允许读（ReadOnly=true）
// - 写入一律原子替换，读者看不到半截 JSON
type Store struct {
	Root     string // <path>（扫描根目录）
	ReadOnly bool
}

var ErrReadOnly = errors.New("reportstore: read-only")

// ErrNoRoot 表示扫描根目录不存在：不会为了写报告而创建它。
var ErrNoRoot = errors.New("reportstore: root is not a directory")

func New(root string, readOnly bool) Store {
	return Store{
		Root:     filepath.Clean(strings.TrimSpace(root)),
		ReadOnly: readOnly,
	}
}

func (s Store) Dir() string { return filepath.Join(s.Root, DirName) }

// Path 返回报告文件的绝对路径。kind 为空时返回最近一次运行的报告。
func (s Store) Path(kind string) (string, error) {
	if kind == "" {
		return filepath.Join(s.Dir(), LatestName), nil
	}
	k, err := cleanKind(kind)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir(), "report-"+k+".json"), nil
}

// Write 同时写入 report.json 与 report-<kind>.json。
func (s Store) Write(rr domain.RunReport) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	k, err := cleanKind(rr.Kind)
	if err != nil {
		return err
	}
	if fi, err := os.Stat(s.Root); err != nil || !fi.IsDir() {
		return ErrNoRoot
	}
	rr.Finalize()
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	if err := fsx.EnsureDir(s.Dir()); err != nil {
		return err
	}
	if err := fsx.WriteFileAtomicReplace(s.Dir(), "report-"+k+".json", b); err != nil {
		return err
	}
	return fsx.WriteFileAtomicReplace(s.Dir(), LatestName, b)
}

// Read 读取报告；不存在时 ok=false 且 err=nil。
func (s Store) Read(kind string) (domain.RunReport, bool, error) {
	path, err := s.Path(kind)
	if err != nil {
		return domain.RunReport{}, false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.RunReport{}, false, nil
		}
		return domain.RunReport{}, false, err
	}
	var rr domain.RunReport
	if err := json.Unmarshal(b, &rr); err != nil {
		return domain.RunReport{}, false, fmt.Errorf("报告文件损坏：%q：%w", path, err)
	}
	return rr, true, nil
}

var kindRE = regexp.MustCompile(`^[a-z]+$`)

func cleanKind(k string) (string, error) {
	k = strings.ToLower(strings.TrimSpace(k))
	if k == "" {
		return "", fmt.Errorf("kind 不能为空")
	}
	// 最小约束：避免路径穿越；kind 本身是枚举（sort/gather）。
	if !kindRE.MatchString(k) {
		return "", fmt.Errorf("非法 kind：%q", k)
	}
	return k, nil
}
