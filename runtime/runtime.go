package runtime

// Host is what a program sees of the machine running it: cross-program
// dispatch and storage pricing. Nothing else leaks in; a program rebuilds
// every other fact from the accounts it is handed.
type Host interface {
	// Invoke runs another program's instruction with the caller's signer
	// privileges.
	Invoke(ix Instruction) error
	// InvokeSigned additionally grants signer privilege to every address
	// derivable from one of the seed groups under the calling program. This
	// is the algorithmic stand-in for a signature from a derived address.
	InvokeSigned(ix Instruction, seeds ...[][]byte) error
	MinimumBalance(size int) uint64
}

// ProcessFunc is a program entrypoint.
type ProcessFunc func(host Host, program Pubkey, accounts []*AccountInfo, data []byte) error

// Runtime holds committed account state and the program registry, and applies
// one transaction at a time: all of its instructions take effect, or none.
type Runtime struct {
	accounts map[Pubkey]*Account
	programs map[Pubkey]ProcessFunc
}

func New() *Runtime {
	r := &Runtime{
		accounts: make(map[Pubkey]*Account),
		programs: make(map[Pubkey]ProcessFunc),
	}
	r.Register(SystemProgramID, processSystem)
	return r
}

func (r *Runtime) Register(program Pubkey, fn ProcessFunc) {
	r.programs[program] = fn
}

// SetAccount installs committed state directly. Genesis and store loading
// only; everything else goes through Apply.
func (r *Runtime) SetAccount(key Pubkey, acct *Account) {
	r.accounts[key] = acct.Clone()
}

// Account returns a copy of the committed account, if it exists.
func (r *Runtime) Account(key Pubkey) (*Account, bool) {
	a, ok := r.accounts[key]
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}

// Accounts snapshots all committed accounts.
func (r *Runtime) Accounts() map[Pubkey]*Account {
	out := make(map[Pubkey]*Account, len(r.accounts))
	for k, v := range r.accounts {
		out[k] = v.Clone()
	}
	return out
}

// Apply executes the transaction against a working copy of all accounts and
// commits the copy only if every instruction succeeds. Accounts left with
// zero lamports after a successful transaction are reclaimed.
func (r *Runtime) Apply(tx *Transaction) error {
	signers, err := tx.verifiedSigners()
	if err != nil {
		return err
	}

	work := make(map[Pubkey]*Account, len(r.accounts))
	for k, v := range r.accounts {
		work[k] = v.Clone()
	}

	env := &execEnv{rt: r, work: work}
	for i := range tx.Message.Instructions {
		if err := env.run(tx.Message.Instructions[i], signers); err != nil {
			return err
		}
	}

	for k, v := range work {
		if v.Lamports == 0 {
			delete(work, k)
		}
	}
	r.accounts = work
	return nil
}

type execEnv struct {
	rt   *Runtime
	work map[Pubkey]*Account
}

func (e *execEnv) run(ix Instruction, privs map[Pubkey]bool) error {
	fn, ok := e.rt.programs[ix.Program]
	if !ok {
		return rterr(RUN_ERR_PROGRAM_UNKNOWN, "no program at "+ix.Program.String())
	}

	infos := make([]*AccountInfo, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		if meta.Signer && !privs[meta.Key] {
			return rterr(RUN_ERR_SIGNATURE_MISSING, "missing signature for "+meta.Key.String())
		}
		acct, ok := e.work[meta.Key]
		if !ok {
			acct = &Account{Owner: SystemProgramID}
			e.work[meta.Key] = acct
		}
		infos[i] = &AccountInfo{
			Key:      meta.Key,
			Account:  acct,
			Signer:   meta.Signer,
			Writable: meta.Writable,
		}
	}

	host := &invokeContext{env: e, caller: ix.Program, privs: privs}
	return fn(host, ix.Program, infos, ix.Data)
}

type invokeContext struct {
	env    *execEnv
	caller Pubkey
	privs  map[Pubkey]bool
}

func (c *invokeContext) Invoke(ix Instruction) error {
	return c.env.run(ix, c.privs)
}

func (c *invokeContext) InvokeSigned(ix Instruction, seeds ...[][]byte) error {
	privs := make(map[Pubkey]bool, len(c.privs)+len(seeds))
	for k, v := range c.privs {
		privs[k] = v
	}
	for _, group := range seeds {
		addr, err := CreateAddress(group, c.caller)
		if err != nil {
			return err
		}
		privs[addr] = true
	}
	return c.env.run(ix, privs)
}

func (c *invokeContext) MinimumBalance(size int) uint64 {
	return MinimumBalance(size)
}
