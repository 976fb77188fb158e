package domain

// MasterKey is the symmetric key protecting every vault record.
//
// It is derived from host identity material and a fixed application label, lives
// only in process memory and is never written to disk. Key is always KeySize bytes.
type MasterKey struct {
	Key []byte
}

// Close zeroes the key material. The MasterKey must not be used afterwards.
func (m *MasterKey) Close() {
	if m == nil {
		return
	}
	Zero(m.Key)
	m.Key = nil
}

// Zero securely overwrites a byte slice with zeros to clear sensitive data from memory.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
