package brine

import "testing"

var benchRecord = Struct{
	0: U64(123456789),
	1: String("connection reset by peer"),
	2: U8(3),
	3: Array{U32(1), U32(2), U32(3), U32(4)},
	4: Timestamp(1700000000),
}

func BenchmarkToBytes(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = ToBytes(benchRecord)
	}
}

func BenchmarkAppendValueReuse(b *testing.B) {
	buf := make([]byte, 0, 256)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf = AppendValue(buf[:0], benchRecord)
	}
}

func BenchmarkFromBytes(b *testing.B) {
	data := ToBytes(benchRecord)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := FromBytes(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFromBytesBorrowed(b *testing.B) {
	data := ToBytes(benchRecord)
	opts := DecodeOptions{BorrowStrings: true}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := opts.FromBytes(data); err != nil {
			b.Fatal(err)
		}
	}
}

type benchTyped struct {
	Seq     uint64   `brine:"0"`
	Message string   `brine:"1"`
	Level   uint8    `brine:"2"`
	Peers   []uint32 `brine:"3"`
}

func BenchmarkMarshalTyped(b *testing.B) {
	in := benchTyped{Seq: 1, Message: "hello", Level: 2, Peers: []uint32{1, 2, 3}}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Marshal(in); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUnmarshalTyped(b *testing.B) {
	data, err := Marshal(benchTyped{Seq: 1, Message: "hello", Level: 2, Peers: []uint32{1, 2, 3}})
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var out benchTyped
		if err := Unmarshal(data, &out); err != nil {
			b.Fatal(err)
		}
	}
}
