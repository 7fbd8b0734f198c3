// internal/frame/crc.go
package frame

import "github.com/sigurn/crc16"

var crcTable = crc16.MakeTable(crc16.CRC16_MODBUS)

// CRC16 computes the Modbus CRC-16 (poly 0xA001 reflected, init 0xFFFF).
func CRC16(b []byte) uint16 {
	return crc16.Checksum(b, crcTable)
}

// appendCRC appends the CRC of b to b, low byte first.
func appendCRC(b []byte) []byte {
	crc := CRC16(b)
	return append(b, byte(crc), byte(crc>>8))
}

// checkCRC verifies the trailing two bytes of adu against the CRC of
// everything before them.
func checkCRC(adu []byte) bool {
	n := len(adu)
	crc := CRC16(adu[:n-rtuCRCSize])
	return adu[n-2] == byte(crc) && adu[n-1] == byte(crc>>8)
}
