package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
)

const whiteboardPrefix = "data:image/png;base64,"

// NormalizeWhiteboard 校验白板快照（data URL），超出尺寸时等比缩小，统一重新编码为PNG
func NormalizeWhiteboard(dataURL string, maxWidth, maxHeight int) (string, error) {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return "", fmt.Errorf("%w: 白板快照必须是 base64 图片 data URL", ErrValidation)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: 白板快照解码失败: %v", ErrValidation, err)
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: 无法识别的白板图片: %v", ErrValidation, err)
	}

	b := img.Bounds()
	if maxWidth > 0 && maxHeight > 0 && (b.Dx() > maxWidth || b.Dy() > maxHeight) {
		img = imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("白板编码失败: %w", err)
	}
	return whiteboardPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
