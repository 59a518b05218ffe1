// Package captcha 生成数字图形验证码，输出可直接内嵌的 base64 data URI。
// 验证码明文不在本包存储，由调用方写入会话缓存统一管理过期和单次使用。
package captcha

import (
	"github.com/mojocn/base64Captcha"
)

const (
	// DefaultWidth / DefaultHeight 是未指定尺寸时的默认图片大小。
	DefaultWidth  = 100
	DefaultHeight = 50
	// codeLength 是验证码字符数，固定 4 位数字。
	codeLength = 4
)

// Generate 渲染一张 width x height 的 4 位数字验证码图片。
// width/height 传 0 时使用默认尺寸。
// 返回验证码明文和图片的 data URI。
func Generate(width, height int) (code, img string, err error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	driver := base64Captcha.NewDriverDigit(height, width, codeLength, 0.7, 80)
	_, content, answer := driver.GenerateIdQuestionAnswer()
	item, err := driver.DrawCaptcha(content)
	if err != nil {
		return "", "", err
	}
	return answer, item.EncodeB64string(), nil
}
