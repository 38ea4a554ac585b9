// Package i18n 提供内嵌的界面/报告文案（YAML），按语言加载并在缺失时回退。
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FallbackLanguage 是语言缺失或键缺失时的回退语言。
const FallbackLanguage = "en"

//go:embed lang/*.yaml
var catalogs embed.FS

// Catalog 是单个语言的 key -> 模板。模板中的 {name} 为占位符。
type Catalog map[string]string

// Bundle 是加载完成的语言包：先查当前语言，再查英文，最后返回 key 本身。
type Bundle struct {
	lang     string
	strings  Catalog
	fallback Catalog
}

// Available 返回内嵌的语言代码（已排序）。
func Available() []string {
	ents, err := fs.ReadDir(catalogs, "lang")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(ents))
	for _, e := range ents {
		if name := e.Name(); strings.HasSuffix(name, ".yaml") {
			out = append(out, strings.TrimSuffix(name, ".yaml"))
		}
	}
	sort.Strings(out)
	return out
}

// Load 加载语言包。lang 支持 "zh-CN" / "zh_CN" 这类写法（只取主语言）。
// 未知语言回退为英文；只有内嵌文件损坏时才返回错误。
func Load(lang string) (*Bundle, error) {
	fb, err := readCatalog(FallbackLanguage)
	if err != nil {
		return nil, err
	}

	code := normalize(lang)
	b := &Bundle{lang: FallbackLanguage, strings: fb, fallback: fb}
	if code == FallbackLanguage || !validCode(code) {
		return b, nil
	}

	c, err := readCatalog(code)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return b, nil
		}
		return nil, err
	}
	b.lang = code
	b.strings = c
	return b, nil
}

// Lang 返回实际生效的语言代码。
func (b *Bundle) Lang() string { return b.lang }

// Get 返回 key 对应的文案，并按 kv（name, value 成对）替换 {name} 占位符。
func (b *Bundle) Get(key string, kv ...any) string {
	tmpl, ok := b.strings[key]
	if !ok {
		tmpl, ok = b.fallback[key]
	}
	if !ok {
		tmpl = key
	}
	return Format(tmpl, kv...)
}

// Format 用 kv 替换模板中的 {name}；多余或缺失的占位符原样保留。
func Format(tmpl string, kv ...any) string {
	if len(kv) < 2 {
		return tmpl
	}
	pairs := make([]string, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "{"+fmt.Sprint(kv[i])+"}", fmt.Sprint(kv[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func readCatalog(code string) (Catalog, error) {
	b, err := catalogs.ReadFile(path.Join("lang", code+".yaml"))
	if err != nil {
		return nil, err
	}
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("语言文件 %s.yaml 无效：%w", code, err)
	}
	if c == nil {
		c = Catalog{}
	}
	return c, nil
}

func normalize(lang string) string {
	s := strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(s, "-_."); i >= 0 {
		s = s[:i]
	}
	return s
}

func validCode(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
