package runtime

import (
	"crypto/ed25519"
)

// AccountMeta declares how one instruction touches one account. The order of
// metas is part of each program's contract.
type AccountMeta struct {
	Key      Pubkey
	Signer   bool
	Writable bool
}

func Meta(key Pubkey, signer, writable bool) AccountMeta {
	return AccountMeta{Key: key, Signer: signer, Writable: writable}
}

type Instruction struct {
	Program  Pubkey
	Accounts []AccountMeta
	Data     []byte
}

// Message is the signed portion of a transaction: the instruction list in a
// fixed little-endian encoding.
type Message struct {
	Instructions []Instruction
}

const (
	metaFlagSigner   = 0x01
	metaFlagWritable = 0x02
)

// Layout:
// ix_count u16le, then per instruction:
// program 32 | meta_count u16le | (pubkey 32, flags u8)* | data_len u32le | data
func (m *Message) Encode() []byte {
	out := appendU16le(nil, uint16(len(m.Instructions)))
	for _, ix := range m.Instructions {
		out = append(out, ix.Program[:]...)
		out = appendU16le(out, uint16(len(ix.Accounts)))
		for _, meta := range ix.Accounts {
			out = append(out, meta.Key[:]...)
			var flags byte
			if meta.Signer {
				flags |= metaFlagSigner
			}
			if meta.Writable {
				flags |= metaFlagWritable
			}
			out = append(out, flags)
		}
		out = appendU32le(out, uint32(len(ix.Data)))
		out = append(out, ix.Data...)
	}
	return out
}

func DecodeMessage(b []byte) (*Message, error) {
	c := newCursor(b)
	ixCount, err := c.readU16LE()
	if err != nil {
		return nil, err
	}
	m := &Message{Instructions: make([]Instruction, 0, ixCount)}
	for i := 0; i < int(ixCount); i++ {
		var ix Instruction
		ix.Program, err = c.readPubkey()
		if err != nil {
			return nil, err
		}
		metaCount, err := c.readU16LE()
		if err != nil {
			return nil, err
		}
		ix.Accounts = make([]AccountMeta, 0, metaCount)
		for j := 0; j < int(metaCount); j++ {
			key, err := c.readPubkey()
			if err != nil {
				return nil, err
			}
			flags, err := c.readU8()
			if err != nil {
				return nil, err
			}
			if flags&^(metaFlagSigner|metaFlagWritable) != 0 {
				return nil, rterr(RUN_ERR_MESSAGE_PARSE, "unknown account meta flags")
			}
			ix.Accounts = append(ix.Accounts, AccountMeta{
				Key:      key,
				Signer:   flags&metaFlagSigner != 0,
				Writable: flags&metaFlagWritable != 0,
			})
		}
		dataLen, err := c.readU32LE()
		if err != nil {
			return nil, err
		}
		data, err := c.readExact(int(dataLen))
		if err != nil {
			return nil, err
		}
		ix.Data = append([]byte(nil), data...)
		m.Instructions = append(m.Instructions, ix)
	}
	if c.remaining() != 0 {
		return nil, rterr(RUN_ERR_MESSAGE_PARSE, "trailing bytes after message")
	}
	return m, nil
}

type TxSignature struct {
	Key Pubkey
	Sig [64]byte
}

// Transaction is one atomic unit of work: every instruction applies, or none
// does.
type Transaction struct {
	Message    Message
	Signatures []TxSignature
}

func NewTransaction(instructions ...Instruction) *Transaction {
	return &Transaction{Message: Message{Instructions: instructions}}
}

// Sign appends a signature over the encoded message for each key. Callers
// sign once per required signer; duplicate keys are harmless.
func (t *Transaction) Sign(keys ...ed25519.PrivateKey) {
	msg := t.Message.Encode()
	for _, key := range keys {
		var sig TxSignature
		sig.Key = PubkeyFromPrivate(key)
		copy(sig.Sig[:], ed25519.Sign(key, msg))
		t.Signatures = append(t.Signatures, sig)
	}
}

// verifiedSigners checks every attached signature and returns the set of
// addresses that validly signed the message.
func (t *Transaction) verifiedSigners() (map[Pubkey]bool, error) {
	msg := t.Message.Encode()
	signers := make(map[Pubkey]bool, len(t.Signatures))
	for _, s := range t.Signatures {
		if !ed25519.Verify(ed25519.PublicKey(s.Key[:]), msg, s.Sig[:]) {
			return nil, rterr(RUN_ERR_SIGNATURE_INVALID, "bad signature from "+s.Key.String())
		}
		signers[s.Key] = true
	}
	return signers, nil
}
