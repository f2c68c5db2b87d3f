package ros1msg_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/msgdef/util/ros1msg"
)

func TestMD5Sum(t *testing.T) {
	headerDef := def("std_msgs/Header", field("uint32", "seq"), field("time", "stamp"), field("string", "frame_id"))
	pointDef := def("geometry_msgs/Point", field("float64", "x"), field("float64", "y"), field("float64", "z"))
	quaternionDef := def("geometry_msgs/Quaternion",
		field("float64", "x"), field("float64", "y"), field("float64", "z"), field("float64", "w"),
	)
	cases := []struct {
		assertion string
		typeName  string
		seq       ros1msg.Sequence
		expected  string
	}{
		{
			"std_msgs/String",
			"std_msgs/String",
			ros1msg.Sequence{def("", field("string", "data"))},
			"992ce8a1687cec8c8bd883ec73ca41d1",
		},
		{
			"std_msgs/Header",
			"std_msgs/Header",
			ros1msg.Sequence{def("", headerDef.Definitions...)},
			"2176decaecbce78abc3b96ef049fabed",
		},
		{
			"geometry_msgs/Point",
			"geometry_msgs/Point",
			ros1msg.Sequence{def("", pointDef.Definitions...)},
			"4a842b65f413084dc2b10fb484ea7f17",
		},
		{
			"geometry_msgs/PointStamped",
			"geometry_msgs/PointStamped",
			ros1msg.Sequence{
				def("", field("Header", "header"), field("Point", "point")),
				headerDef,
				pointDef,
			},
			"c63aecb41bfdfd6b7e1fac37c7cbe7bf",
		},
		{
			"geometry_msgs/Pose",
			"geometry_msgs/Pose",
			ros1msg.Sequence{
				def("", field("Point", "position"), field("Quaternion", "orientation")),
				pointDef,
				quaternionDef,
			},
			"e45d45a5a1ce597b249e23fb30fc871f",
		},
		{
			"constants use compact form",
			"pkg/Log",
			ros1msg.Sequence{def("",
				field("string", "name"),
				constant("uint8", "DEBUG", "1"),
				constant("uint8", "INFO", "2"),
			)},
			"18a3015c5084a3a55fc89349b015eae5",
		},
		{
			"builtin arrays keep their suffix",
			"pkg/Arrays",
			ros1msg.Sequence{def("", array("string", "names"), fixed("uint8", "flags", 4))},
			"9184f91316fb16c9861013c11668b66c",
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			sum, err := ros1msg.MD5Sum(c.typeName, c.seq)
			require.NoError(t, err)
			require.Equal(t, c.expected, sum)
		})
	}
}

func TestMD5SumOfDecodedText(t *testing.T) {
	text := "Header header\nPoint point\n" +
		ros1msg.Separator + "\nMSG: std_msgs/Header\nuint32 seq\ntime stamp\nstring frame_id\n" +
		ros1msg.Separator + "\nMSG: geometry_msgs/Point\nfloat64 x\nfloat64 y\nfloat64 z\n"
	seq, err := ros1msg.Decode(text)
	require.NoError(t, err)
	sum, err := ros1msg.MD5Sum("geometry_msgs/PointStamped", seq)
	require.NoError(t, err)
	require.Equal(t, "c63aecb41bfdfd6b7e1fac37c7cbe7bf", sum)
}

func TestMD5SumErrors(t *testing.T) {
	t.Run("unknown type", func(t *testing.T) {
		_, err := ros1msg.MD5Sum("pkg/A", ros1msg.Sequence{def("", field("Missing", "m"))})
		require.ErrorIs(t, err, ros1msg.ErrUnknownType)
	})
	t.Run("cycle", func(t *testing.T) {
		seq := ros1msg.Sequence{
			def("", field("B", "b")),
			def("pkg/B", field("C", "c")),
			def("pkg/C", field("B", "b")),
		}
		_, err := ros1msg.MD5Sum("pkg/A", seq)
		require.ErrorIs(t, err, ros1msg.CyclicDependencyError{})
	})
	t.Run("empty sequence", func(t *testing.T) {
		_, err := ros1msg.MD5Sum("pkg/A", nil)
		require.ErrorIs(t, err, ros1msg.MalformedDefinitionError{})
	})
}

func TestFingerprint(t *testing.T) {
	a := ros1msg.Fingerprint("std_msgs/String", "string data\n")
	b := ros1msg.Fingerprint("std_msgs/String", "string data\n")
	c := ros1msg.Fingerprint("std_msgs/String", "string other\n")
	d := ros1msg.Fingerprint("pkg/String", "string data\n")
	require.Len(t, a, 32)
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.NotEqual(t, a, d)
}
