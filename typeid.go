// SPDX-License-Identifier: Apache-2.0

package unmanaged

import (
	"fmt"
	"math"
	"reflect"
)

// TypeID is a compact per-type identity: the upper 16 bits are a djb2
// hash of the fully-qualified type name, the lower 16 bits the type's
// byte size. Collections embed it in content hashes so structurally
// equal collections of different element types hash apart.
//
// IDs are computed once per distinct type and are deterministic for a
// fixed set of types; a hash collision between two names is resolved by
// perturbing the hash until the ID is unique.
type TypeID uint32

// Size returns the byte size packed into the identity.
func (id TypeID) Size() int { return int(id & 0xFFFF) }

var (
	typeIDs      = map[reflect.Type]TypeID{}
	typeIDOwners = map[TypeID]reflect.Type{}
)

// TypeIDOf returns the identity of T, computing and registering it on
// first use. Like the rest of the package this is not synchronized.
func TypeIDOf[T any]() TypeID {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if id, ok := typeIDs[rt]; ok {
		return id
	}
	size := rt.Size()
	if size > math.MaxUint16 {
		panic(fmt.Sprintf("unmanaged: type %v of %d bytes is too large for a packed identity", rt, size))
	}
	hash := uint16(djb2String(qualifiedName(rt)))
	id := packTypeID(hash, uint16(size))
	for {
		owner, taken := typeIDOwners[id]
		if !taken || owner == rt {
			break
		}
		hash++ // deterministic perturbation on collision
		id = packTypeID(hash, uint16(size))
	}
	typeIDs[rt] = id
	typeIDOwners[id] = rt
	return id
}

func packTypeID(hash, size uint16) TypeID {
	return TypeID(uint32(hash)<<16 | uint32(size))
}

func qualifiedName(rt reflect.Type) string {
	if rt.PkgPath() != "" {
		return rt.PkgPath() + "." + rt.Name()
	}
	return rt.String()
}
