// Package xmp 从 XMP sidecar 中读取评级（xmp:Rating）与色标（xmp:Label）。
//
// 只解析这两个属性，不校验完整 schema，也不写回。
package xmp

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/John-Robertt/ImagingTriage/internal/domain"
)

const (
	NSRDF = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSXMP = "http://ns.adobe.com/xap/1.0/"
)

// ParseError 表示 sidecar 不是格式良好的 XML。
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("解析 %s 失败：%v", filepath.Base(e.Path), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NotFoundError 表示 sidecar 在列目录之后、读取之前消失了。
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sidecar 不存在：%s", filepath.Base(e.Path))
}

func (e *NotFoundError) Unwrap() error { return os.ErrNotExist }

// Read 打开 path 并提取 Metadata。
//
// 调用方应把任何错误等同于“没有元数据”处理，同时记录诊断。
func Read(path string) (domain.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Metadata{}, &NotFoundError{Path: path}
		}
		return domain.Metadata{}, err
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return domain.Metadata{}, &ParseError{Path: path, Err: err}
	}
	return m, nil
}

// Decode 流式查找文档中第一个 rdf:Description（任意深度，先到先得），读取其
// xmp:Rating / xmp:Label。
//
// 属性形式优先；属性缺失时接受 Description 的直接子元素形式（<xmp:Rating>3</xmp:Rating>）。
// 找到 Description 后仍会把文档读完，以保证“格式不良好”总能被报告。
func Decode(r io.Reader) (domain.Metadata, error) {
	dec := xml.NewDecoder(r)
	// 声明了非 UTF-8 编码（如 ISO-8859-1）时按声明转码；无法识别的编码报解析错误。
	dec.CharsetReader = charset.NewReaderLabel

	var (
		meta    domain.Metadata
		sawRoot bool
		found   bool
		done    bool // 第一个 Description 已闭合

		depth      int // 当前元素深度
		descDepth  int // Description 所在深度
		childField string
		childText  strings.Builder
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return domain.Metadata{}, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			sawRoot = true
			if done {
				continue
			}
			if !found {
				if t.Name.Space == NSRDF && t.Name.Local == "Description" {
					found = true
					descDepth = depth
					for _, a := range t.Attr {
						if a.Name.Space != NSXMP {
							continue
						}
						switch a.Name.Local {
						case "Rating":
							meta.Rating = strings.TrimSpace(a.Value)
						case "Label":
							meta.Label = strings.TrimSpace(a.Value)
						}
					}
				}
				continue
			}
			if depth == descDepth+1 && t.Name.Space == NSXMP && (t.Name.Local == "Rating" || t.Name.Local == "Label") {
				childField = t.Name.Local
				childText.Reset()
			}
		case xml.CharData:
			if childField != "" {
				childText.Write(t)
			}
		case xml.EndElement:
			if found && !done {
				if childField != "" && depth == descDepth+1 {
					v := strings.TrimSpace(childText.String())
					switch childField {
					case "Rating":
						if meta.Rating == "" {
							meta.Rating = v
						}
					case "Label":
						if meta.Label == "" {
							meta.Label = v
						}
					}
					childField = ""
				}
				if depth == descDepth {
					done = true
				}
			}
			depth--
		}
	}

	if !sawRoot {
		return domain.Metadata{}, errors.New("文档没有根元素")
	}
	if !found {
		return domain.Metadata{}, nil
	}
	return meta, nil
}
