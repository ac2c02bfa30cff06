// response_test.go: tests for the Response Value sum type
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

import "testing"

func TestBytesResponseNilBecomesNull(t *testing.T) {
	r := BytesResponse(nil)
	if r.Kind != RespNull {
		t.Fatalf("BytesResponse(nil).Kind = %v, want RespNull", r.Kind)
	}
}

func TestBytesResponseWrapsNonNil(t *testing.T) {
	r := BytesResponse([]byte("hi"))
	if r.Kind != RespBytes || string(r.Bytes) != "hi" {
		t.Fatalf("BytesResponse(hi) = %+v, want Kind=RespBytes Bytes=hi", r)
	}
}

func TestBytesArrayResponsePreservesNilSlots(t *testing.T) {
	r := BytesArrayResponse([][]byte{[]byte("a"), nil, []byte("c")})
	if r.Kind != RespArray || len(r.Array) != 3 {
		t.Fatalf("BytesArrayResponse() = %+v, want a 3-element RespArray", r)
	}
	if r.Array[1].Kind != RespNull {
		t.Fatalf("BytesArrayResponse()[1].Kind = %v, want RespNull", r.Array[1].Kind)
	}
	if string(r.Array[0].Bytes) != "a" || string(r.Array[2].Bytes) != "c" {
		t.Fatalf("BytesArrayResponse() = %+v, want a and c preserved", r)
	}
}

func TestResponseKindString(t *testing.T) {
	tests := []struct {
		kind ResponseKind
		want string
	}{
		{RespNull, "null"},
		{RespInt, "int"},
		{RespBytes, "bytes"},
		{RespArray, "array"},
		{RespMap, "map"},
		{RespSet, "set"},
		{RespBool, "bool"},
		{RespOk, "ok"},
		{ResponseKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ResponseKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestMapResponseCarriesPairs(t *testing.T) {
	r := MapResponse([]ResponsePair{
		{Key: BytesResponse([]byte("f1")), Value: BytesResponse([]byte("v1"))},
	})
	if r.Kind != RespMap || len(r.Map) != 1 {
		t.Fatalf("MapResponse() = %+v, want a 1-pair RespMap", r)
	}
	if string(r.Map[0].Key.Bytes) != "f1" || string(r.Map[0].Value.Bytes) != "v1" {
		t.Fatalf("MapResponse()[0] = %+v, want f1=v1", r.Map[0])
	}
}
