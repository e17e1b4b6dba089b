package utils

// XOREncode XORs data with key, cycling the key. An empty key returns an
// unmodified copy.
func XOREncode(data []byte, key []byte) []byte {
	result := make([]byte, len(data))
	if len(key) == 0 {
		copy(result, data)
		return result
	}
	for i := range data {
		result[i] = data[i] ^ key[i%len(key)]
	}
	return result
}

// XORDecode decodes data with repeating XOR key (XOR is symmetric)
func XORDecode(data []byte, key []byte) []byte {
	return XOREncode(data, key)
}
