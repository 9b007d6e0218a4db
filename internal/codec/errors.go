package codec

import (
	"errors"
	"fmt"
)

// Stage names the pipeline step a DecodeError came from.
type Stage string

const (
	StageEngine  Stage = "engine"
	StageBase64  Stage = "base64"
	StageLayout  Stage = "layout"
	StageCipher  Stage = "cipher"
	StagePadding Stage = "padding"
	StageUTF8    Stage = "utf8"
)

var (
	ErrEngineUnavailable = errors.New("no key source configured")
	ErrShortBlob         = errors.New("blob shorter than IV")
	ErrCiphertextSize    = errors.New("ciphertext is not a positive multiple of the block size")
	ErrPadding           = errors.New("invalid PKCS#7 padding")
	ErrInvalidUTF8       = errors.New("plaintext is not valid UTF-8")
)

// DecodeError is returned by Decrypt for every failure.
type DecodeError struct {
	Stage Stage
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decrypt: %s: %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &DecodeError{Stage: stage, Err: err}
}
