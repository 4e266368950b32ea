package datatables

import (
	"fmt"
	"strconv"
	"strings"
)

type Domain uint8

const (
	DomainInvalid Domain = iota
	DomainBool
	DomainWord
	DomainFloat
	DomainString
)

func (d Domain) String() string {
	switch d {
	case DomainBool:
		return "bool"
	case DomainWord:
		return "word"
	case DomainFloat:
		return "float"
	case DomainString:
		return "string"
	}
	return "invalid"
}

type PrefixInfo struct {
	Name   string
	Domain Domain
	Max    int // valid indexes are 1..Max
}

// Prefixes is the full address map of the controller. Index ranges are fixed,
// so each prefix can be backed by one contiguous slice.
var Prefixes = []PrefixInfo{
	{"X", DomainBool, 2000},
	{"Y", DomainBool, 2000},
	{"C", DomainBool, 2000},
	{"SC", DomainBool, 1000},
	{"T", DomainBool, 500},
	{"CT", DomainBool, 250},

	{"XD", DomainWord, 125},
	{"YD", DomainWord, 125},
	{"XS", DomainWord, 125},
	{"YS", DomainWord, 125},
	{"DS", DomainWord, 10000},
	{"DD", DomainWord, 2000},
	{"DH", DomainWord, 2000},
	{"SD", DomainWord, 1000},
	{"TD", DomainWord, 500},
	{"CTD", DomainWord, 250},

	{"DF", DomainFloat, 2000},

	{"TXT", DomainString, 10000},
}

var prefixByName = func() map[string]*PrefixInfo {
	m := make(map[string]*PrefixInfo, len(Prefixes))
	for i := range Prefixes {
		m[Prefixes[i].Name] = &Prefixes[i]
	}
	return m
}()

// SplitAddress splits "DS42" into its prefix info and 1-based index.
// Returns ok == false if the prefix is unknown or the index is out of range.
func SplitAddress(addr string) (info *PrefixInfo, index int, ok bool) {
	i := 0
	for i < len(addr) && addr[i] >= 'A' && addr[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(addr) {
		return nil, 0, false
	}
	info, found := prefixByName[addr[:i]]
	if !found {
		return nil, 0, false
	}
	index, err := strconv.Atoi(addr[i:])
	if err != nil || index < 1 || index > info.Max {
		return nil, 0, false
	}
	return info, index, true
}

// ValidAddress reports whether addr names a cell of the address space.
func ValidAddress(addr string) bool {
	_, _, ok := SplitAddress(strings.ToUpper(addr))
	return ok
}

// DomainOf returns the storage domain of addr, or DomainInvalid.
func DomainOf(addr string) Domain {
	info, _, ok := SplitAddress(strings.ToUpper(addr))
	if !ok {
		return DomainInvalid
	}
	return info.Domain
}

// Addr builds the canonical address string for a prefix and 1-based index.
func Addr(prefix string, index int) string {
	return prefix + strconv.Itoa(index)
}

type InvalidAddressError struct {
	Addr string
}

func (e InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address: %s", e.Addr)
}
