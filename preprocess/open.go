package preprocess

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/up-zero/gotool/imageutil"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	ocreval "github.com/getcharzp/ocr-eval"
)

// Open 读取并解码图像文件
func Open(path string) (image.Image, error) {
	img, err := imageutil.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ocreval.ErrImageDecode, path, err)
	}
	if err := checkImage(img); err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return img, nil
}

// Decode 从数据流解码图像
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ocreval.ErrImageDecode, err)
	}
	if err := checkImage(img); err != nil {
		return nil, err
	}
	return img, nil
}

func checkImage(img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("%w: 图像尺寸为空", ocreval.ErrImageDecode)
	}
	return nil
}
