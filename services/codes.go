package services

import (
	"math/rand"
	"strconv"

	"sessionpulse/models"

	"gorm.io/gorm"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// CodeGenerator produces candidate join codes. Codes are short so humans can
// type them; they are not secrets.
type CodeGenerator func() string

// NumericCode returns a random 6-digit code in [100000, 999999].
func NumericCode() string {
	return strconv.Itoa(100000 + rand.Intn(900000))
}

// AlphanumericCode returns a random 6-character uppercase alphanumeric code.
func AlphanumericCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// CodeIndex reports whether a candidate code is already in use.
type CodeIndex interface {
	CodeExists(code string) (bool, error)
}

// AllocateCode draws candidates from gen until one is not present in the
// index. The check is best-effort: there is no lock between the check and the
// caller's eventual write, which is acceptable at the scale these codes are
// used (a 36^6 space against a handful of live polls).
func AllocateCode(gen CodeGenerator, index CodeIndex) (string, error) {
	for {
		code := gen()
		exists, err := index.CodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
}

// GroupCodeIndex checks a candidate against both poll slots of every group.
// A code must be free across start and end columns simultaneously.
type GroupCodeIndex struct {
	DB *gorm.DB
}

func (i GroupCodeIndex) CodeExists(code string) (bool, error) {
	var count int64
	err := i.DB.Model(&models.Group{}).
		Where("start_poll_code = ? OR end_poll_code = ?", code, code).
		Count(&count).Error
	return count > 0, err
}

// ResultCodeIndex checks a candidate against existing shareable result codes.
type ResultCodeIndex struct {
	DB *gorm.DB
}

func (i ResultCodeIndex) CodeExists(code string) (bool, error) {
	var count int64
	err := i.DB.Model(&models.Result{}).
		Where("result_code = ?", code).
		Count(&count).Error
	return count > 0, err
}
