// Command coconutctl drives the threshold anonymous credential protocol
// from the shell: generate public parameters, deal threshold signer
// shares, build and answer signature requests, aggregate shares and
// verify keys, and produce or verify a selective-disclosure credential
// proof. Every artifact is a JSON file with base64- or hex-encoded field
// material, threaded between subcommands by flag, the way credgen
// threads keypair.json/credential.json/proof.json between its own
// subcommands.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/anupsv/coconut-threshold/coconut"
)

// Command represents a subcommand.
type Command struct {
	Name        string
	Description string
	Execute     func(args []string) error
}

func main() {
	commands := []Command{
		{Name: "params", Description: "Derive public parameters for an L-attribute, t-of-n credential", Execute: cmdParams},
		{Name: "dealer", Description: "Deal threshold signer shares from public parameters", Execute: cmdDealer},
		{Name: "vkshare", Description: "Export a signer share's public verify-key share", Execute: cmdVKShare},
		{Name: "aggregate-vk", Description: "Aggregate verify-key shares into a verify key", Execute: cmdAggregateVK},
		{Name: "client-init", Description: "Create a client's attribute vector and ElGamal keypair", Execute: cmdClientInit},
		{Name: "request", Description: "Build a signature request and its proof of knowledge", Execute: cmdRequest},
		{Name: "sign", Description: "Blind-sign a request as one threshold issuer", Execute: cmdSign},
		{Name: "finalize", Description: "Unblind and aggregate collected blind signature shares", Execute: cmdFinalize},
		{Name: "prove", Description: "Build a selective-disclosure credential proof", Execute: cmdProve},
		{Name: "verify", Description: "Verify a credential proof against a verify key", Execute: cmdVerify},
	}

	if len(os.Args) < 2 {
		showHelp(commands)
		os.Exit(1)
	}

	cmdName := os.Args[1]
	for _, cmd := range commands {
		if cmd.Name == cmdName {
			if err := cmd.Execute(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			os.Exit(0)
		}
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmdName)
	showHelp(commands)
	os.Exit(1)
}

func showHelp(commands []Command) {
	fmt.Println("coconutctl - threshold anonymous credential protocol utility")
	fmt.Println("\nUsage:")
	fmt.Println("  coconutctl <command> [options]")

	fmt.Println("\nAvailable Commands:")
	for _, cmd := range commands {
		fmt.Printf("  %-14s %s\n", cmd.Name, cmd.Description)
	}

	fmt.Println("\nRun 'coconutctl <command> -h' for more information about a command")
}

// --- wire encoding helpers -------------------------------------------------

func b64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func unb64(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }

func encG1(p coconut.G1Point) string { return b64(p.Bytes()) }

func decG1(s string) (coconut.G1Point, error) {
	b, err := unb64(s)
	if err != nil {
		return coconut.G1Point{}, fmt.Errorf("decode G1 point: %w", err)
	}
	return coconut.ParseG1Point(b)
}

func encG2(p coconut.G2Point) string { return b64(p.Bytes()) }

func decG2(s string) (coconut.G2Point, error) {
	b, err := unb64(s)
	if err != nil {
		return coconut.G2Point{}, fmt.Errorf("decode G2 point: %w", err)
	}
	return coconut.ParseG2Point(b)
}

func encG1Slice(ps []coconut.G1Point) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = encG1(p)
	}
	return out
}

func decG1Slice(ss []string) ([]coconut.G1Point, error) {
	out := make([]coconut.G1Point, len(ss))
	for i, s := range ss {
		p, err := decG1(s)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func encG2Slice(ps []coconut.G2Point) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = encG2(p)
	}
	return out
}

func decG2Slice(ss []string) ([]coconut.G2Point, error) {
	out := make([]coconut.G2Point, len(ss))
	for i, s := range ss {
		p, err := decG2(s)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func encScalar(x *big.Int) string { return x.Text(16) }

func decScalar(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex scalar %q", s)
	}
	return n, nil
}

func encScalarSlice(xs []*big.Int) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = encScalar(x)
	}
	return out
}

func decScalarSlice(ss []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(ss))
	for i, s := range ss {
		x, err := decScalar(s)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

func encIntScalarMap(m map[int]*big.Int) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strconv.Itoa(k)] = encScalar(v)
	}
	return out
}

func decIntScalarMap(m map[string]string) (map[int]*big.Int, error) {
	out := make(map[int]*big.Int, len(m))
	for k, v := range m {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("invalid attribute index %q: %w", k, err)
		}
		x, err := decScalar(v)
		if err != nil {
			return nil, err
		}
		out[idx] = x
	}
	return out, nil
}

func parseIndexList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		idx, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid index %q: %w", p, err)
		}
		out = append(out, idx)
	}
	return out, nil
}

func splitFiles(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// --- wire types -------------------------------------------------------------

type paramsWire struct {
	L         int      `json:"l"`
	Label     string   `json:"label"`
	Threshold int      `json:"threshold"`
	Total     int      `json:"total"`
	GTilde    string   `json:"gTilde"`
	G         string   `json:"g"`
	H         string   `json:"h"`
	YTilde    []string `json:"yTilde"`
}

func paramsToWire(p *coconut.PublicParams) *paramsWire {
	return &paramsWire{
		L:         p.L,
		Label:     b64(p.Label),
		Threshold: p.Threshold,
		Total:     p.Total,
		GTilde:    encG2(p.GTilde),
		G:         encG1(p.G),
		H:         encG1(p.H),
		YTilde:    encG2Slice(p.YTilde),
	}
}

func paramsFromWire(w *paramsWire) (*coconut.PublicParams, error) {
	label, err := unb64(w.Label)
	if err != nil {
		return nil, fmt.Errorf("decode label: %w", err)
	}
	gTilde, err := decG2(w.GTilde)
	if err != nil {
		return nil, err
	}
	g, err := decG1(w.G)
	if err != nil {
		return nil, err
	}
	h, err := decG1(w.H)
	if err != nil {
		return nil, err
	}
	yTilde, err := decG2Slice(w.YTilde)
	if err != nil {
		return nil, err
	}
	return &coconut.PublicParams{
		L:         w.L,
		Label:     label,
		Threshold: w.Threshold,
		Total:     w.Total,
		GTilde:    gTilde,
		YTilde:    yTilde,
		G:         g,
		H:         h,
	}, nil
}

func loadParams(path string) (*coconut.PublicParams, error) {
	var w paramsWire
	if err := readJSON(path, &w); err != nil {
		return nil, err
	}
	return paramsFromWire(&w)
}

type shareWire struct {
	ID     int      `json:"id"`
	X      string   `json:"x"`
	Y      []string `json:"y"`
	XTilde string   `json:"xTilde"`
	YTilde []string `json:"yTilde"`
}

func shareToWire(s *coconut.SignerShare) *shareWire {
	return &shareWire{
		ID:     s.ID,
		X:      encScalar(s.X),
		Y:      encScalarSlice(s.Y),
		XTilde: encG2(s.XTilde),
		YTilde: encG2Slice(s.YTilde),
	}
}

func shareFromWire(w *shareWire) (*coconut.SignerShare, error) {
	x, err := decScalar(w.X)
	if err != nil {
		return nil, err
	}
	y, err := decScalarSlice(w.Y)
	if err != nil {
		return nil, err
	}
	xTilde, err := decG2(w.XTilde)
	if err != nil {
		return nil, err
	}
	yTilde, err := decG2Slice(w.YTilde)
	if err != nil {
		return nil, err
	}
	return &coconut.SignerShare{ID: w.ID, X: x, Y: y, XTilde: xTilde, YTilde: yTilde}, nil
}

type vkShareWire struct {
	ID     int      `json:"id"`
	XTilde string   `json:"xTilde"`
	YTilde []string `json:"yTilde"`
}

func vkShareToWire(k *coconut.VerifyKeyShare) *vkShareWire {
	return &vkShareWire{ID: k.ID, XTilde: encG2(k.XTilde), YTilde: encG2Slice(k.YTilde)}
}

func vkShareFromWire(w *vkShareWire) (*coconut.VerifyKeyShare, error) {
	xTilde, err := decG2(w.XTilde)
	if err != nil {
		return nil, err
	}
	yTilde, err := decG2Slice(w.YTilde)
	if err != nil {
		return nil, err
	}
	return &coconut.VerifyKeyShare{ID: w.ID, XTilde: xTilde, YTilde: yTilde}, nil
}

type vkWire struct {
	XTilde string   `json:"xTilde"`
	YTilde []string `json:"yTilde"`
}

func vkToWire(k *coconut.VerifyKey) *vkWire {
	return &vkWire{XTilde: encG2(k.XTilde), YTilde: encG2Slice(k.YTilde)}
}

func vkFromWire(w *vkWire) (*coconut.VerifyKey, error) {
	xTilde, err := decG2(w.XTilde)
	if err != nil {
		return nil, err
	}
	yTilde, err := decG2Slice(w.YTilde)
	if err != nil {
		return nil, err
	}
	return &coconut.VerifyKey{XTilde: xTilde, YTilde: yTilde}, nil
}

func loadVK(path string) (*coconut.VerifyKey, error) {
	var w vkWire
	if err := readJSON(path, &w); err != nil {
		return nil, err
	}
	return vkFromWire(&w)
}

type ciphertextWire struct {
	C1 string `json:"c1"`
	C2 string `json:"c2"`
}

func ciphertextToWire(c coconut.Ciphertext) ciphertextWire {
	return ciphertextWire{C1: encG1(c.C1), C2: encG1(c.C2)}
}

func ciphertextFromWire(w ciphertextWire) (coconut.Ciphertext, error) {
	c1, err := decG1(w.C1)
	if err != nil {
		return coconut.Ciphertext{}, err
	}
	c2, err := decG1(w.C2)
	if err != nil {
		return coconut.Ciphertext{}, err
	}
	return coconut.Ciphertext{C1: c1, C2: c2}, nil
}

// clientWire is the Client's private continuation state threaded between
// client-init, request, finalize, and prove. It holds everything the
// Client role in rolectl keeps in memory for the lifetime of one epoch.
type clientWire struct {
	Messages  map[string]string `json:"messages"`
	ElGamalSK string            `json:"elGamalSk"`
	ElGamalPK string            `json:"elGamalPk"`
	Signature *signatureWire    `json:"signature,omitempty"`
}

type signatureWire struct {
	Sigma1 string `json:"sigma1"`
	Sigma2 string `json:"sigma2"`
}

func signatureToWire(s *coconut.Signature) *signatureWire {
	return &signatureWire{Sigma1: encG1(s.Sigma1), Sigma2: encG1(s.Sigma2)}
}

func signatureFromWire(w *signatureWire) (*coconut.Signature, error) {
	s1, err := decG1(w.Sigma1)
	if err != nil {
		return nil, err
	}
	s2, err := decG1(w.Sigma2)
	if err != nil {
		return nil, err
	}
	return &coconut.Signature{Sigma1: s1, Sigma2: s2}, nil
}

type requestWire struct {
	Pk      string                    `json:"pk"`
	Hidden  map[string]ciphertextWire `json:"hidden"`
	Visible map[string]string         `json:"visible"`
	C       string                    `json:"c"`
}

type requestProofWire struct {
	Order     []int             `json:"order"`
	T1        map[string]string `json:"t1"`
	T2        map[string]string `json:"t2"`
	TC        string            `json:"tc"`
	ZR        map[string]string `json:"zr"`
	ZM        map[string]string `json:"zm"`
	Challenge string            `json:"challenge"`
}

type blindSigWire struct {
	SignerID int    `json:"signerId"`
	Sigma1   string `json:"sigma1"`
	Tilde1   string `json:"tilde1"`
	Tilde2   string `json:"tilde2"`
}

type proofWire struct {
	T         string   `json:"t"`
	Responses []string `json:"responses"`
}

type credProofWire struct {
	SigmaPrime *signatureWire    `json:"sigmaPrime"`
	J          string            `json:"j"`
	PoKVC      proofWire         `json:"pokVc"`
	Phi        string            `json:"phi"`
	PoKPhi     proofWire         `json:"pokPhi"`
	E1         string            `json:"e1"`
	PoKE1      proofWire         `json:"pokE1"`
	E2         string            `json:"e2"`
	PoKE2      proofWire         `json:"pokE2"`
	Domain     string            `json:"domain"`
	Revealed   map[string]string `json:"revealed"`
	Challenge  string            `json:"challenge"`
}

// --- params -----------------------------------------------------------------

func cmdParams(args []string) error {
	fs := pflag.NewFlagSet("params", pflag.ExitOnError)
	attrCount := fs.Int("attributes", 2, "Number of attributes, including the reserved user-secret slot")
	label := fs.String("label", "coconut-threshold-credential", "Domain-separation label for generator derivation")
	threshold := fs.Int("threshold", 2, "Signing threshold t")
	total := fs.Int("total", 3, "Total number of issuers n")
	output := fs.String("output", "params.json", "Output file for public parameters")
	fs.Parse(args)

	params, err := coconut.NewPublicParams(*attrCount, []byte(*label), *threshold, *total)
	if err != nil {
		return fmt.Errorf("derive public parameters: %w", err)
	}
	if err := writeJSON(*output, paramsToWire(params)); err != nil {
		return err
	}
	fmt.Printf("Public parameters (L=%d, %d-of-%d) written to %s\n", params.L, params.Threshold, params.Total, *output)
	return nil
}

// --- dealer -----------------------------------------------------------------

func cmdDealer(args []string) error {
	fs := pflag.NewFlagSet("dealer", pflag.ExitOnError)
	paramsFile := fs.String("params", "params.json", "Public parameters file")
	outputDir := fs.String("output-dir", ".", "Directory to write one share-<id>.json file per issuer")
	fs.Parse(args)

	params, err := loadParams(*paramsFile)
	if err != nil {
		return err
	}
	shares, err := coconut.GenerateSignerShares(params, rand.Reader)
	if err != nil {
		return fmt.Errorf("deal signer shares: %w", err)
	}
	for _, s := range shares {
		path := fmt.Sprintf("%s/share-%d.json", strings.TrimRight(*outputDir, "/"), s.ID)
		if err := writeJSON(path, shareToWire(s)); err != nil {
			return err
		}
	}
	fmt.Printf("Dealt %d signer shares to %s\n", len(shares), *outputDir)
	return nil
}

// --- vkshare -----------------------------------------------------------------

func cmdVKShare(args []string) error {
	fs := pflag.NewFlagSet("vkshare", pflag.ExitOnError)
	shareFile := fs.String("share", "", "Signer share file")
	output := fs.String("output", "", "Output file for the verify-key share (default vkshare-<id>.json)")
	fs.Parse(args)
	if *shareFile == "" {
		return fmt.Errorf("-share is required")
	}

	var w shareWire
	if err := readJSON(*shareFile, &w); err != nil {
		return err
	}
	share, err := shareFromWire(&w)
	if err != nil {
		return err
	}
	out := *output
	if out == "" {
		out = fmt.Sprintf("vkshare-%d.json", share.ID)
	}
	if err := writeJSON(out, vkShareToWire(share.Public())); err != nil {
		return err
	}
	fmt.Printf("Verify-key share for signer %d written to %s\n", share.ID, out)
	return nil
}

// --- aggregate-vk -------------------------------------------------------------

func cmdAggregateVK(args []string) error {
	fs := pflag.NewFlagSet("aggregate-vk", pflag.ExitOnError)
	sharesFlag := fs.String("shares", "", "Comma-separated list of verify-key share files")
	threshold := fs.Int("threshold", 0, "Signing threshold t")
	output := fs.String("output", "vk.json", "Output file for the aggregated verify key")
	fs.Parse(args)

	files := splitFiles(*sharesFlag)
	if len(files) == 0 {
		return fmt.Errorf("-shares is required")
	}
	shares := make([]*coconut.VerifyKeyShare, 0, len(files))
	for _, f := range files {
		var w vkShareWire
		if err := readJSON(f, &w); err != nil {
			return err
		}
		share, err := vkShareFromWire(&w)
		if err != nil {
			return err
		}
		shares = append(shares, share)
	}

	vk, err := coconut.AggregateVerifyKeys(shares, *threshold)
	if err != nil {
		return fmt.Errorf("aggregate verify keys: %w", err)
	}
	if err := writeJSON(*output, vkToWire(vk)); err != nil {
		return err
	}
	fmt.Printf("Aggregated %d verify-key shares into %s\n", len(shares), *output)
	return nil
}

// --- client-init --------------------------------------------------------------

func cmdClientInit(args []string) error {
	fs := pflag.NewFlagSet("client-init", pflag.ExitOnError)
	paramsFile := fs.String("params", "params.json", "Public parameters file")
	attrsFile := fs.String("attributes", "", "JSON file mapping attribute index (string) to a decimal or 0x-hex value; missing indices are filled with fresh random scalars")
	output := fs.String("output", "client.json", "Output file for the client's continuation state")
	fs.Parse(args)

	params, err := loadParams(*paramsFile)
	if err != nil {
		return err
	}

	raw := map[string]string{}
	if *attrsFile != "" {
		if err := readJSON(*attrsFile, &raw); err != nil {
			return err
		}
	}

	messages := make(map[int]*big.Int, params.L)
	for k, v := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("invalid attribute index %q: %w", k, err)
		}
		if err := params.ValidateIndices("client-init", idx); err != nil {
			return err
		}
		x, ok := new(big.Int).SetString(v, 0)
		if !ok {
			return fmt.Errorf("invalid attribute value %q for index %d", v, idx)
		}
		messages[idx] = x
	}
	for idx := 0; idx < params.L; idx++ {
		if _, ok := messages[idx]; ok {
			continue
		}
		x, err := coconut.RandomScalar(rand.Reader.Read)
		if err != nil {
			return fmt.Errorf("sample attribute %d: %w", idx, err)
		}
		messages[idx] = x
		fmt.Printf("Attribute %d not supplied; filled with a fresh random scalar\n", idx)
	}

	keys, err := coconut.ElGamalKeyGen(params.G, rand.Reader)
	if err != nil {
		return fmt.Errorf("generate ElGamal keypair: %w", err)
	}

	cw := &clientWire{
		Messages:  encIntScalarMap(messages),
		ElGamalSK: encScalar(keys.SK),
		ElGamalPK: encG1(keys.PK),
	}
	if err := writeJSON(*output, cw); err != nil {
		return err
	}
	fmt.Printf("Client state (%d attributes) written to %s\n", params.L, *output)
	return nil
}

// --- request -------------------------------------------------------------------

func cmdRequest(args []string) error {
	fs := pflag.NewFlagSet("request", pflag.ExitOnError)
	paramsFile := fs.String("params", "params.json", "Public parameters file")
	clientFile := fs.String("client", "client.json", "Client state file")
	hiddenFlag := fs.String("hidden", "", "Comma-separated list of hidden attribute indices; the user-secret slot is always hidden, every other index is treated as visible")
	requestOut := fs.String("output", "request.json", "Output file for the signature request")
	proofOut := fs.String("proof-output", "request-proof.json", "Output file for the request's proof of knowledge")
	fs.Parse(args)

	params, err := loadParams(*paramsFile)
	if err != nil {
		return err
	}
	var cw clientWire
	if err := readJSON(*clientFile, &cw); err != nil {
		return err
	}
	messages, err := decIntScalarMap(cw.Messages)
	if err != nil {
		return err
	}
	pk, err := decG1(cw.ElGamalPK)
	if err != nil {
		return err
	}

	hiddenIdx, err := parseIndexList(*hiddenFlag)
	if err != nil {
		return err
	}
	hiddenSet := make(map[int]bool, len(hiddenIdx))
	for _, k := range hiddenIdx {
		hiddenSet[k] = true
	}
	// coconut.UserSecretIndex must never be revealed: default it hidden
	// unless the caller explicitly listed it.
	hiddenSet[coconut.UserSecretIndex] = true

	hidden := make(map[int]*big.Int)
	visible := make(map[int]*big.Int)
	for idx, m := range messages {
		if hiddenSet[idx] {
			hidden[idx] = m
		} else {
			visible[idx] = m
		}
	}

	req, randomness, err := coconut.NewSignatureRequest(params, pk, hidden, visible, rand.Reader)
	if err != nil {
		return fmt.Errorf("build signature request: %w", err)
	}
	proof, err := coconut.NewRequestProof(params, pk, req, hidden, randomness, rand.Reader)
	if err != nil {
		return fmt.Errorf("build request proof: %w", err)
	}

	hiddenWire := make(map[string]ciphertextWire, len(req.Hidden))
	for k, c := range req.Hidden {
		hiddenWire[strconv.Itoa(k)] = ciphertextToWire(c)
	}
	if err := writeJSON(*requestOut, &requestWire{
		Pk:      encG1(pk),
		Hidden:  hiddenWire,
		Visible: encIntScalarMap(req.Visible),
		C:       encG1(req.C),
	}); err != nil {
		return err
	}

	t1 := make(map[string]string, len(proof.T1))
	t2 := make(map[string]string, len(proof.T2))
	zr := make(map[string]string, len(proof.ZR))
	zm := make(map[string]string, len(proof.ZM))
	for _, k := range proof.Order {
		key := strconv.Itoa(k)
		t1[key] = encG1(proof.T1[k])
		t2[key] = encG1(proof.T2[k])
		zr[key] = encScalar(proof.ZR[k])
		zm[key] = encScalar(proof.ZM[k])
	}
	if err := writeJSON(*proofOut, &requestProofWire{
		Order:     proof.Order,
		T1:        t1,
		T2:        t2,
		TC:        encG1(proof.TC),
		ZR:        zr,
		ZM:        zm,
		Challenge: encScalar(proof.Challenge),
	}); err != nil {
		return err
	}

	fmt.Printf("Signature request (%d hidden, %d visible) written to %s and %s\n", len(hidden), len(visible), *requestOut, *proofOut)
	return nil
}

func loadRequest(path string) (*coconut.SignatureRequest, coconut.G1Point, error) {
	var w requestWire
	if err := readJSON(path, &w); err != nil {
		return nil, coconut.G1Point{}, err
	}
	pk, err := decG1(w.Pk)
	if err != nil {
		return nil, coconut.G1Point{}, err
	}
	hidden := make(map[int]coconut.Ciphertext, len(w.Hidden))
	for k, c := range w.Hidden {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, coconut.G1Point{}, fmt.Errorf("invalid hidden index %q: %w", k, err)
		}
		ct, err := ciphertextFromWire(c)
		if err != nil {
			return nil, coconut.G1Point{}, err
		}
		hidden[idx] = ct
	}
	visible, err := decIntScalarMap(w.Visible)
	if err != nil {
		return nil, coconut.G1Point{}, err
	}
	c, err := decG1(w.C)
	if err != nil {
		return nil, coconut.G1Point{}, err
	}
	return &coconut.SignatureRequest{Hidden: hidden, Visible: visible, C: c}, pk, nil
}

func loadRequestProof(path string) (*coconut.RequestProof, error) {
	var w requestProofWire
	if err := readJSON(path, &w); err != nil {
		return nil, err
	}
	t1 := make(map[int]coconut.G1Point, len(w.Order))
	t2 := make(map[int]coconut.G1Point, len(w.Order))
	zr := make(map[int]*big.Int, len(w.Order))
	zm := make(map[int]*big.Int, len(w.Order))
	for _, k := range w.Order {
		key := strconv.Itoa(k)
		p1, err := decG1(w.T1[key])
		if err != nil {
			return nil, err
		}
		t1[k] = p1
		p2, err := decG1(w.T2[key])
		if err != nil {
			return nil, err
		}
		t2[k] = p2
		r, err := decScalar(w.ZR[key])
		if err != nil {
			return nil, err
		}
		zr[k] = r
		m, err := decScalar(w.ZM[key])
		if err != nil {
			return nil, err
		}
		zm[k] = m
	}
	tc, err := decG1(w.TC)
	if err != nil {
		return nil, err
	}
	challenge, err := decScalar(w.Challenge)
	if err != nil {
		return nil, err
	}
	return &coconut.RequestProof{Order: w.Order, T1: t1, T2: t2, TC: tc, ZR: zr, ZM: zm, Challenge: challenge}, nil
}

// --- sign -------------------------------------------------------------------

func cmdSign(args []string) error {
	fs := pflag.NewFlagSet("sign", pflag.ExitOnError)
	paramsFile := fs.String("params", "params.json", "Public parameters file")
	shareFile := fs.String("share", "", "This issuer's signer share file")
	requestFile := fs.String("request", "request.json", "Signature request file")
	proofFile := fs.String("proof", "request-proof.json", "Signature request proof file")
	output := fs.String("output", "", "Output file for the blind signature share (default blindsig-<id>.json)")
	fs.Parse(args)
	if *shareFile == "" {
		return fmt.Errorf("-share is required")
	}

	params, err := loadParams(*paramsFile)
	if err != nil {
		return err
	}
	var sw shareWire
	if err := readJSON(*shareFile, &sw); err != nil {
		return err
	}
	share, err := shareFromWire(&sw)
	if err != nil {
		return err
	}
	req, pk, err := loadRequest(*requestFile)
	if err != nil {
		return err
	}
	proof, err := loadRequestProof(*proofFile)
	if err != nil {
		return err
	}

	bs, err := share.BlindSign(params, pk, req, proof)
	if err != nil {
		return fmt.Errorf("blind sign: %w", err)
	}

	out := *output
	if out == "" {
		out = fmt.Sprintf("blindsig-%d.json", share.ID)
	}
	if err := writeJSON(out, &blindSigWire{
		SignerID: share.ID,
		Sigma1:   encG1(bs.Sigma1),
		Tilde1:   encG1(bs.Tilde1),
		Tilde2:   encG1(bs.Tilde2),
	}); err != nil {
		return err
	}
	fmt.Printf("Blind signature share from signer %d written to %s\n", share.ID, out)
	return nil
}

// --- finalize -----------------------------------------------------------------

func cmdFinalize(args []string) error {
	fs := pflag.NewFlagSet("finalize", pflag.ExitOnError)
	clientFile := fs.String("client", "client.json", "Client state file")
	blindSigsFlag := fs.String("blindsigs", "", "Comma-separated list of blind signature share files")
	threshold := fs.Int("threshold", 0, "Signing threshold t")
	fs.Parse(args)

	files := splitFiles(*blindSigsFlag)
	if len(files) == 0 {
		return fmt.Errorf("-blindsigs is required")
	}

	var cw clientWire
	if err := readJSON(*clientFile, &cw); err != nil {
		return err
	}
	sk, err := decScalar(cw.ElGamalSK)
	if err != nil {
		return err
	}

	shares := make([]*coconut.SignatureShare, 0, len(files))
	for _, f := range files {
		var w blindSigWire
		if err := readJSON(f, &w); err != nil {
			return err
		}
		sigma1, err := decG1(w.Sigma1)
		if err != nil {
			return err
		}
		tilde1, err := decG1(w.Tilde1)
		if err != nil {
			return err
		}
		tilde2, err := decG1(w.Tilde2)
		if err != nil {
			return err
		}
		bs := &coconut.BlindSignature{Sigma1: sigma1, Tilde1: tilde1, Tilde2: tilde2}
		share, err := bs.Unblind(w.SignerID, sk)
		if err != nil {
			return fmt.Errorf("unblind signer %d share: %w", w.SignerID, err)
		}
		shares = append(shares, share)
	}

	sig, err := coconut.AggregateSignatureShares(shares, *threshold)
	if err != nil {
		return fmt.Errorf("aggregate signature shares: %w", err)
	}

	cw.Signature = signatureToWire(sig)
	if err := writeJSON(*clientFile, &cw); err != nil {
		return err
	}
	fmt.Printf("Aggregated %d signature shares; client is now ready to prove\n", len(shares))
	return nil
}

// --- prove -------------------------------------------------------------------

func cmdProve(args []string) error {
	fs := pflag.NewFlagSet("prove", pflag.ExitOnError)
	paramsFile := fs.String("params", "params.json", "Public parameters file")
	vkFile := fs.String("vk", "vk.json", "Verify key file")
	clientFile := fs.String("client", "client.json", "Client state file")
	domain := fs.String("domain", "", "Relying-party domain the pseudonym is bound to")
	revealFlag := fs.String("reveal", "", "Comma-separated list of attribute indices to reveal")
	output := fs.String("output", "cred-proof.json", "Output file for the credential proof")
	fs.Parse(args)
	if *domain == "" {
		return fmt.Errorf("-domain is required")
	}

	params, err := loadParams(*paramsFile)
	if err != nil {
		return err
	}
	vk, err := loadVK(*vkFile)
	if err != nil {
		return err
	}
	var cw clientWire
	if err := readJSON(*clientFile, &cw); err != nil {
		return err
	}
	if cw.Signature == nil {
		return fmt.Errorf("client has no aggregated signature yet; run finalize first")
	}
	sig, err := signatureFromWire(cw.Signature)
	if err != nil {
		return err
	}
	messages, err := decIntScalarMap(cw.Messages)
	if err != nil {
		return err
	}
	reveal, err := parseIndexList(*revealFlag)
	if err != nil {
		return err
	}

	proof, err := coconut.ProveCredential(params, vk, sig, messages, reveal, *domain, rand.Reader)
	if err != nil {
		return fmt.Errorf("build credential proof: %w", err)
	}

	if err := writeJSON(*output, credProofToWire(proof)); err != nil {
		return err
	}
	fmt.Printf("Credential proof for domain %q (revealing %v) written to %s\n", *domain, reveal, *output)
	return nil
}

func credProofToWire(p *coconut.CredentialProof) *credProofWire {
	return &credProofWire{
		SigmaPrime: signatureToWire(&p.SigmaPrime),
		J:          encG2(p.J),
		PoKVC:      proofWire{T: encG2(p.PoKVC.T), Responses: encScalarSlice(p.PoKVC.Responses)},
		Phi:        encG1(p.Phi),
		PoKPhi:     proofWire{T: encG1(p.PoKPhi.T), Responses: encScalarSlice(p.PoKPhi.Responses)},
		E1:         encG1(p.E1),
		PoKE1:      proofWire{T: encG1(p.PoKE1.T), Responses: encScalarSlice(p.PoKE1.Responses)},
		E2:         encG1(p.E2),
		PoKE2:      proofWire{T: encG1(p.PoKE2.T), Responses: encScalarSlice(p.PoKE2.Responses)},
		Domain:     p.Domain,
		Revealed:   encIntScalarMap(p.Revealed),
		Challenge:  encScalar(p.Challenge),
	}
}

func credProofFromWire(w *credProofWire) (*coconut.CredentialProof, error) {
	sigmaPrime, err := signatureFromWire(w.SigmaPrime)
	if err != nil {
		return nil, err
	}
	j, err := decG2(w.J)
	if err != nil {
		return nil, err
	}
	pokVCT, err := decG2(w.PoKVC.T)
	if err != nil {
		return nil, err
	}
	pokVCResponses, err := decScalarSlice(w.PoKVC.Responses)
	if err != nil {
		return nil, err
	}
	phi, err := decG1(w.Phi)
	if err != nil {
		return nil, err
	}
	pokPhiT, err := decG1(w.PoKPhi.T)
	if err != nil {
		return nil, err
	}
	pokPhiResponses, err := decScalarSlice(w.PoKPhi.Responses)
	if err != nil {
		return nil, err
	}
	e1, err := decG1(w.E1)
	if err != nil {
		return nil, err
	}
	pokE1T, err := decG1(w.PoKE1.T)
	if err != nil {
		return nil, err
	}
	pokE1Responses, err := decScalarSlice(w.PoKE1.Responses)
	if err != nil {
		return nil, err
	}
	e2, err := decG1(w.E2)
	if err != nil {
		return nil, err
	}
	pokE2T, err := decG1(w.PoKE2.T)
	if err != nil {
		return nil, err
	}
	pokE2Responses, err := decScalarSlice(w.PoKE2.Responses)
	if err != nil {
		return nil, err
	}
	revealed, err := decIntScalarMap(w.Revealed)
	if err != nil {
		return nil, err
	}
	challenge, err := decScalar(w.Challenge)
	if err != nil {
		return nil, err
	}

	return &coconut.CredentialProof{
		SigmaPrime: *sigmaPrime,
		J:          j,
		PoKVC:      &coconut.Proof[coconut.G2Point]{T: pokVCT, Responses: pokVCResponses},
		Phi:        phi,
		PoKPhi:     &coconut.Proof[coconut.G1Point]{T: pokPhiT, Responses: pokPhiResponses},
		E1:         e1,
		PoKE1:      &coconut.Proof[coconut.G1Point]{T: pokE1T, Responses: pokE1Responses},
		E2:         e2,
		PoKE2:      &coconut.Proof[coconut.G1Point]{T: pokE2T, Responses: pokE2Responses},
		Domain:     w.Domain,
		Revealed:   revealed,
		Challenge:  challenge,
	}, nil
}

// --- verify -------------------------------------------------------------------

func cmdVerify(args []string) error {
	fs := pflag.NewFlagSet("verify", pflag.ExitOnError)
	paramsFile := fs.String("params", "params.json", "Public parameters file")
	vkFile := fs.String("vk", "vk.json", "Verify key file")
	proofFile := fs.String("proof", "cred-proof.json", "Credential proof file")
	domain := fs.String("domain", "", "Expected domain; rejects a proof bound to any other domain")
	fs.Parse(args)

	params, err := loadParams(*paramsFile)
	if err != nil {
		return err
	}
	vk, err := loadVK(*vkFile)
	if err != nil {
		return err
	}
	var w credProofWire
	if err := readJSON(*proofFile, &w); err != nil {
		return err
	}
	proof, err := credProofFromWire(&w)
	if err != nil {
		return err
	}

	if *domain != "" && proof.Domain != *domain {
		return fmt.Errorf("credential proof domain %q does not match expected domain %q", proof.Domain, *domain)
	}

	revealedIdx := make([]int, 0, len(proof.Revealed))
	for k := range proof.Revealed {
		revealedIdx = append(revealedIdx, k)
	}
	sort.Ints(revealedIdx)

	if err := coconut.VerifyCredentialProof(params, vk, proof); err != nil {
		return fmt.Errorf("credential proof rejected: %w", err)
	}

	fmt.Printf("Credential proof accepted for domain %q, revealed attributes %v\n", proof.Domain, revealedIdx)
	return nil
}
