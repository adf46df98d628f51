package objectWriter

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/golang/glog"
	"github.gatech.edu/ECEInnovation/AVR-Assembler/assembler"
)

const bytesPerRecord = 16

// Intel HEX and byte addressing both stop at 4 GiB, so word addresses stop at half that.
const maxWordAddress = 0x7FFFFFFF

// maxBinarySize covers the 22-bit word address space of the largest AVR parts.
const maxBinarySize = 8 << 20

const (
	recordData                  = 0x00
	recordEndOfFile             = 0x01
	recordExtendedLinearAddress = 0x04
)

// memoryByte is one byte of program memory at its byte address.
type memoryByte struct {
	address uint32
	value   byte
}

// layoutBytes places every word little-endian at byte address 2*word address and returns
// the bytes in address order. Two lines claiming the same word is an error.
func layoutBytes(lines []assembler.EncodedLine) ([]memoryByte, error) {
	owner := make(map[uint32]int)
	out := make([]memoryByte, 0, 2*len(lines))
	for _, l := range lines {
		for i, w := range l.Words() {
			if uint64(l.Address)+uint64(i) > maxWordAddress {
				return nil, fmt.Errorf("line %d is above the highest writable word address 0x%X", l.Line, maxWordAddress)
			}
			address := l.Address + uint32(i)
			if prev, taken := owner[address]; taken {
				return nil, fmt.Errorf("line %d overlaps line %d at word address 0x%X", l.Line, prev, address)
			}
			owner[address] = l.Line
			out = append(out,
				memoryByte{address: 2 * address, value: byte(w)},
				memoryByte{address: 2*address + 1, value: byte(w >> 8)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].address < out[j].address })
	return out, nil
}

// WriteBinary writes a flat memory image starting at address 0. Unused bytes are zero.
func WriteBinary(w io.Writer, lines []assembler.EncodedLine) error {
	bytes, err := layoutBytes(lines)
	if err != nil {
		return err
	}
	if len(bytes) == 0 {
		return nil
	}

	size := uint64(bytes[len(bytes)-1].address) + 1
	if size > maxBinarySize {
		return fmt.Errorf("binary image would be %d bytes, the limit is %d; use Intel HEX for sparse programs", size, maxBinarySize)
	}
	image := make([]byte, size)
	for _, b := range bytes {
		image[b.address] = b.value
	}
	glog.V(1).Infof("Writing %d byte binary image", len(image))
	_, err = w.Write(image)
	return err
}

// WriteIntelHex writes the program in Intel HEX format.
func WriteIntelHex(w io.Writer, lines []assembler.EncodedLine) error {
	bytes, err := layoutBytes(lines)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(w)
	upper := uint32(0)
	records := 0
	for i := 0; i < len(bytes); {
		start := bytes[i].address
		if start>>16 != upper {
			upper = start >> 16
			writeRecord(out, recordExtendedLinearAddress, 0, []byte{byte(upper >> 8), byte(upper)})
			records++
		}

		data := []byte{bytes[i].value}
		i++
		for i < len(bytes) && len(data) < bytesPerRecord &&
			bytes[i].address == start+uint32(len(data)) && bytes[i].address>>16 == upper {
			data = append(data, bytes[i].value)
			i++
		}
		writeRecord(out, recordData, uint16(start), data)
		records++
	}
	writeRecord(out, recordEndOfFile, 0, nil)

	glog.V(1).Infof("Wrote %d Intel HEX records", records+1)
	return out.Flush()
}

func writeRecord(w *bufio.Writer, kind byte, address uint16, data []byte) {
	sum := byte(len(data)) + byte(address>>8) + byte(address) + kind
	fmt.Fprintf(w, ":%02X%04X%02X", len(data), address, kind)
	for _, b := range data {
		fmt.Fprintf(w, "%02X", b)
		sum += b
	}
	fmt.Fprintf(w, "%02X\n", -sum)
}
