package kore

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint computes a 64-bit structural hash of a term. Equal terms
// hash equal; the encoding tags every node kind so that shape
// differences cannot cancel out.
func Fingerprint(t Term) uint64 {
	d := xxhash.New()
	hashTerm(d, t)
	return d.Sum64()
}

// PredicateFingerprint hashes a predicate the same way.
func PredicateFingerprint(p Predicate) uint64 {
	d := xxhash.New()
	hashPredicate(d, p)
	return d.Sum64()
}

const (
	tagSortApp byte = iota + 1
	tagSortVar
	tagSymbolApp
	tagVariable
	tagDomainValue
	tagAndTerm
	tagInjection
	tagKList
	tagKMap
	tagKSet
	tagNil

	tagTop
	tagBottom
	tagCeil
	tagEquals
	tagIn
	tagExists
	tagForall
	tagPredAnd
	tagPredOr
	tagPredNot
	tagPredIff
	tagPredImplies
	tagBoolTerm
)

func hashByte(d *xxhash.Digest, b byte) {
	_, _ = d.Write([]byte{b})
}

func hashString(d *xxhash.Digest, s string) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(s)))
	_, _ = d.Write(n[:])
	_, _ = d.WriteString(s)
}

func hashLen(d *xxhash.Digest, n int) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(n))
	_, _ = d.Write(b[:])
}

func hashSort(d *xxhash.Digest, s Sort) {
	switch srt := s.(type) {
	case SortApp:
		hashByte(d, tagSortApp)
		hashString(d, srt.Name)
		hashLen(d, len(srt.Args))
		for _, a := range srt.Args {
			hashSort(d, a)
		}
	case SortVar:
		hashByte(d, tagSortVar)
		hashString(d, srt.Name)
	default:
		panic(fmt.Sprintf("kore: unhandled sort shape %T", s))
	}
}

func hashOptTerm(d *xxhash.Digest, t Term) {
	if t == nil {
		hashByte(d, tagNil)
		return
	}
	hashTerm(d, t)
}

func hashTerm(d *xxhash.Digest, t Term) {
	switch term := t.(type) {
	case SymbolApplication:
		hashByte(d, tagSymbolApp)
		hashString(d, term.Symbol.Name)
		hashLen(d, len(term.SortParams))
		for _, s := range term.SortParams {
			hashSort(d, s)
		}
		hashLen(d, len(term.Args))
		for _, a := range term.Args {
			hashTerm(d, a)
		}
	case Variable:
		hashByte(d, tagVariable)
		hashString(d, term.Name)
		hashSort(d, term.VarSort)
	case DomainValue:
		hashByte(d, tagDomainValue)
		hashSort(d, term.ValueSort)
		hashLen(d, len(term.Value))
		_, _ = d.Write(term.Value)
	case AndTerm:
		hashByte(d, tagAndTerm)
		hashTerm(d, term.Left)
		hashTerm(d, term.Right)
	case Injection:
		hashByte(d, tagInjection)
		hashSort(d, term.From)
		hashSort(d, term.To)
		hashTerm(d, term.Child)
	case KList:
		hashByte(d, tagKList)
		hashSort(d, term.CollSort)
		hashLen(d, len(term.Elems))
		for _, e := range term.Elems {
			hashTerm(d, e)
		}
		hashOptTerm(d, term.Frame)
	case KMap:
		hashByte(d, tagKMap)
		hashSort(d, term.CollSort)
		hashLen(d, len(term.Pairs))
		for _, kv := range term.Pairs {
			hashTerm(d, kv.Key)
			hashTerm(d, kv.Value)
		}
		hashOptTerm(d, term.Rest)
	case KSet:
		hashByte(d, tagKSet)
		hashSort(d, term.CollSort)
		hashLen(d, len(term.Elems))
		for _, e := range term.Elems {
			hashTerm(d, e)
		}
		hashOptTerm(d, term.Rest)
	default:
		panic(fmt.Sprintf("kore: unhandled term shape %T", t))
	}
}

func hashPredicate(d *xxhash.Digest, p Predicate) {
	switch pred := p.(type) {
	case Top:
		hashByte(d, tagTop)
	case Bottom:
		hashByte(d, tagBottom)
	case Ceil:
		hashByte(d, tagCeil)
		hashTerm(d, pred.Of)
	case Equals:
		hashByte(d, tagEquals)
		hashTerm(d, pred.Left)
		hashTerm(d, pred.Right)
	case In:
		hashByte(d, tagIn)
		hashTerm(d, pred.Element)
		hashTerm(d, pred.Container)
	case Exists:
		hashByte(d, tagExists)
		hashTerm(d, pred.Var)
		hashPredicate(d, pred.Body)
	case Forall:
		hashByte(d, tagForall)
		hashTerm(d, pred.Var)
		hashPredicate(d, pred.Body)
	case And:
		hashByte(d, tagPredAnd)
		hashPredicate(d, pred.Left)
		hashPredicate(d, pred.Right)
	case Or:
		hashByte(d, tagPredOr)
		hashPredicate(d, pred.Left)
		hashPredicate(d, pred.Right)
	case Not:
		hashByte(d, tagPredNot)
		hashPredicate(d, pred.Body)
	case Iff:
		hashByte(d, tagPredIff)
		hashPredicate(d, pred.Left)
		hashPredicate(d, pred.Right)
	case Implies:
		hashByte(d, tagPredImplies)
		hashPredicate(d, pred.Left)
		hashPredicate(d, pred.Right)
	case BoolTerm:
		hashByte(d, tagBoolTerm)
		hashTerm(d, pred.Term)
	default:
		panic(fmt.Sprintf("kore: unhandled predicate shape %T", p))
	}
}
