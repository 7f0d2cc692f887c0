// Package blueprint builds and checks EIP-5202 blueprint contracts: code that
// cannot be called, only copied by a factory as initcode for new instances.
package blueprint

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrBytecodeTooLarge = errors.New("blueprint: bytecode too large")
	ErrInvalidPreamble  = errors.New("blueprint: invalid deploy preamble")
	ErrNotBlueprint     = errors.New("blueprint: not an EIP-5202 blueprint")
	ErrReservedBits     = errors.New("blueprint: reserved length bits set")
	ErrEmptyInitcode    = errors.New("blueprint: empty initcode")
	ErrVersion          = errors.New("blueprint: unsupported version")
)

const (
	// PUSH2 <len> RETURNDATASIZE DUP2 PUSH1 0x0a RETURNDATASIZE CODECOPY RETURN
	deployPreambleLength = 10

	maxCodeLength = 0xffff
)

var (
	magic          = []byte{0xfe, 0x71}
	preambleTail   = []byte{0x3d, 0x81, 0x60, 0x0a, 0x3d, 0x39, 0xf3}
	versionZeroHdr = []byte{0xfe, 0x71, 0x00}
)

// Blueprint is the parsed form of blueprint code.
type Blueprint struct {
	Version  byte
	Data     []byte
	Initcode []byte
}

// Code returns bytecode wrapped as a version 0 blueprint without a data section.
func Code(bytecode []byte) []byte {
	code := make([]byte, 0, len(versionZeroHdr)+len(bytecode))
	code = append(code, versionZeroHdr...)

	return append(code, bytecode...)
}

// Initcode returns the creation code that stores Code(bytecode) on chain.
func Initcode(bytecode []byte) ([]byte, error) {
	if len(bytecode) == 0 {
		return nil, ErrEmptyInitcode
	}

	code := Code(bytecode)
	if len(code) > maxCodeLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrBytecodeTooLarge, len(bytecode))
	}

	initcode := make([]byte, 0, deployPreambleLength+len(code))
	initcode = append(initcode, 0x61)
	initcode = binary.BigEndian.AppendUint16(initcode, uint16(len(code)))
	initcode = append(initcode, preambleTail...)

	return append(initcode, code...), nil
}

// VerifyDeployPreamble checks creation code produced by Initcode and returns
// the blueprint code it deploys.
func VerifyDeployPreamble(initcode []byte) ([]byte, error) {
	if len(initcode) < deployPreambleLength || initcode[0] != 0x61 {
		return nil, ErrInvalidPreamble
	}

	if !bytes.Equal(initcode[3:deployPreambleLength], preambleTail) {
		return nil, ErrInvalidPreamble
	}

	code := initcode[deployPreambleLength:]
	if declared := int(binary.BigEndian.Uint16(initcode[1:3])); declared != len(code) {
		return nil, fmt.Errorf("%w: declared length %d, have %d", ErrInvalidPreamble, declared, len(code))
	}

	if err := Verify(code); err != nil {
		return nil, err
	}

	return code, nil
}

// Parse splits blueprint code into version, data section and initcode.
func Parse(code []byte) (*Blueprint, error) {
	if len(code) < 3 || !bytes.HasPrefix(code, magic) {
		return nil, ErrNotBlueprint
	}

	version := code[2] >> 2
	lengthBytes := int(code[2] & 0b11)

	if lengthBytes == 0b11 {
		return nil, ErrReservedBits
	}

	offset := 3
	if len(code) < offset+lengthBytes {
		return nil, ErrNotBlueprint
	}

	var data []byte

	if lengthBytes > 0 {
		var dataLength int
		for _, b := range code[offset : offset+lengthBytes] {
			dataLength = dataLength<<8 | int(b)
		}

		offset += lengthBytes
		if len(code) < offset+dataLength {
			return nil, fmt.Errorf("%w: data section overruns code", ErrNotBlueprint)
		}

		data = code[offset : offset+dataLength]
		offset += dataLength
	}

	initcode := code[offset:]
	if len(initcode) == 0 {
		return nil, ErrEmptyInitcode
	}

	return &Blueprint{Version: version, Data: data, Initcode: initcode}, nil
}

// Verify checks that code is a version 0 blueprint.
func Verify(code []byte) error {
	bp, err := Parse(code)
	if err != nil {
		return err
	}

	if bp.Version != 0 {
		return fmt.Errorf("%w: %d", ErrVersion, bp.Version)
	}

	return nil
}
