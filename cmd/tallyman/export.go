package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/voidshard/tallyman/pkg/crypto"
	"github.com/voidshard/tallyman/pkg/export"
)

type exportCmd struct {
	Format  string `help:"Export format [tally-xml] (default from config)."`
	In      string `help:"JSON transactions file, stdin when empty."`
	Out     string `help:"Write the document here instead of embedding it in the JSON reply."`
	SignKey string `name:"sign-key" help:"Sign the document with this key (see keygen)."`
}

// exportReply is the JSON printed by export. Failures are replies too, so
// callers always get a parseable answer on stdout.
type exportReply struct {
	Success   bool   `json:"success"`
	Content   string `json:"content,omitempty"`
	File      string `json:"file,omitempty"`
	Signature string `json:"signature,omitempty"`
	Message   string `json:"message,omitempty"`
}

func (e *exportCmd) Run(g *globals) error {
	_, cfg, err := g.setup()
	if err != nil {
		return err
	}
	if e.Format == "" {
		e.Format = cfg.Export.Format
	}
	if e.SignKey == "" {
		e.SignKey = cfg.Export.SignKey
	}

	var in io.Reader = os.Stdin
	if e.In != "" {
		f, err := os.Open(e.In)
		if err != nil {
			return writeJSON(stdout, &exportReply{Message: err.Error()})
		}
		defer f.Close()
		in = f
	}

	return writeJSON(stdout, e.export(in))
}

func (e *exportCmd) export(in io.Reader) *exportReply {
	exp, err := export.For(e.Format)
	if err != nil {
		return &exportReply{Message: fmt.Sprintf("Unknown format: %s", e.Format)}
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return &exportReply{Message: err.Error()}
	}

	txns, err := export.ReadTransactions(data)
	if err != nil {
		return &exportReply{Message: err.Error()}
	}

	doc, err := exp.Generate(txns)
	if err != nil {
		return &exportReply{Message: err.Error()}
	}

	reply := &exportReply{Success: true}
	if e.SignKey != "" {
		reply.Signature, err = crypto.Sign(doc, e.SignKey)
		if err != nil {
			return &exportReply{Message: err.Error()}
		}
	}

	if e.Out == "" {
		reply.Content = string(doc)
		return reply
	}

	if err := os.WriteFile(e.Out, doc, 0644); err != nil {
		return &exportReply{Message: err.Error()}
	}
	if reply.Signature != "" {
		if err := os.WriteFile(e.Out+".sig", []byte(reply.Signature+"\n"), 0644); err != nil {
			return &exportReply{Message: err.Error()}
		}
	}
	reply.File = e.Out
	return reply
}

type keygenCmd struct{}

func (k *keygenCmd) Run(g *globals) error {
	key, err := crypto.NewRandomKey()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, key)
	return err
}

type verifyCmd struct {
	File    string `arg help:"Exported document."`
	SigFile string `name:"sig-file" help:"Signature file, defaults to FILE.sig."`
	Key     string `help:"Signing key (default from config)."`
}

func (v *verifyCmd) Run(g *globals) error {
	_, cfg, err := g.setup()
	if err != nil {
		return err
	}
	if v.Key == "" {
		v.Key = cfg.Export.SignKey
	}
	if v.SigFile == "" {
		v.SigFile = v.File + ".sig"
	}

	doc, err := os.ReadFile(v.File)
	if err != nil {
		return err
	}
	sig, err := os.ReadFile(v.SigFile)
	if err != nil {
		return err
	}

	ok, err := crypto.Verify(doc, strings.TrimSpace(string(sig)), v.Key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("signature mismatch for %s", v.File)
	}

	_, err = fmt.Fprintln(stdout, "ok")
	return err
}
