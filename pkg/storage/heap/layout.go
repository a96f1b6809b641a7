package heap

// numSlots returns how many tuples of tupleSize bytes fit on a page of
// pageSize bytes when every tuple also costs one header bit.
func numSlots(pageSize int, tupleSize uint32) int {
	if tupleSize == 0 {
		return 0
	}
	return (pageSize * 8) / (int(tupleSize)*8 + 1)
}

// headerSize is the number of bitmap bytes needed for slots bits.
func headerSize(slots int) int {
	return (slots + 7) / 8
}

func isSlotUsed(header []byte, slot int) bool {
	return header[slot/8]&(1<<(slot%8)) != 0
}

func setSlot(header []byte, slot int, used bool) {
	if used {
		header[slot/8] |= 1 << (slot % 8)
	} else {
		header[slot/8] &^= 1 << (slot % 8)
	}
}

// CreateEmptyPageData returns the bytes of a page with no occupied slots.
func CreateEmptyPageData(pageSize int) []byte {
	return make([]byte, pageSize)
}
