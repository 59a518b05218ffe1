// Package hash 实现“密码明文 + 每用户盐值”的口令散列。
package hash

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// PasswordHash 计算 md5(plain + salt) 的十六进制小写摘要。
// 存储的口令和登录比对都必须走这一个函数，保证口径一致。
func PasswordHash(plain, salt string) string {
	sum := md5.Sum([]byte(plain + salt))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword 校验明文口令加盐散列后是否与存储值一致。
func VerifyPassword(plain, salt, hashed string) bool {
	return PasswordHash(plain, salt) == hashed
}

// GenerateSalt 生成 length 个十六进制字符的随机盐值。
func GenerateSalt(length int) string {
	if length <= 0 {
		length = 32
	}
	bytes := make([]byte, (length+1)/2)
	if _, err := rand.Read(bytes); err != nil {
		// 随机源不可用时退化为时间戳，避免直接 panic
		fallback := fmt.Sprintf("%x", time.Now().UnixNano())
		for len(fallback) < length {
			fallback += fallback
		}
		return fallback[:length]
	}
	return hex.EncodeToString(bytes)[:length]
}
