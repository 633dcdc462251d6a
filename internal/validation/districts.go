package validation

import "sort"

// districts are the 77 districts of Nepal accepted as an issuing district.
var districts = []string{
	"Achham", "Arghakhanchi", "Baglung", "Baitadi", "Bajhang", "Bajura", "Banke", "Bara", "Bardiya",
	"Bhaktapur", "Bhojpur", "Chitwan", "Dadeldhura", "Dailekh", "Dang", "Darchula", "Dhading", "Dhankuta",
	"Dhanusha", "Dolakha", "Dolpa", "Doti", "Eastern Rukum", "Gorkha", "Gulmi", "Humla", "Ilam", "Jajarkot",
	"Jhapa", "Jumla", "Kailali", "Kalikot", "Kanchanpur", "Kapilvastu", "Kaski", "Kathmandu", "Kavrepalanchok",
	"Khotang", "Lalitpur", "Lamjung", "Mahottari", "Makwanpur", "Manang", "Morang", "Mugu", "Mustang", "Myagdi",
	"Nawalpur", "Nuwakot", "Okhaldhunga", "Palpa", "Panchthar", "Parasi", "Parbat", "Parsa", "Pyuthan", "Ramechhap",
	"Rasuwa", "Rautahat", "Rolpa", "Rupandehi", "Salyan", "Sankhuwasabha", "Saptari", "Sarlahi", "Sindhuli",
	"Sindhupalchok", "Siraha", "Solukhumbu", "Sunsari", "Surkhet", "Syangja", "Tanahun", "Taplejung", "Terhathum",
	"Udayapur", "Western Rukum",
}

var districtSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(districts))
	for _, d := range districts {
		m[d] = struct{}{}
	}
	return m
}()

// Districts returns the accepted district names in alphabetical order.
func Districts() []string {
	out := append([]string(nil), districts...)
	sort.Strings(out)
	return out
}

// IsDistrict reports whether name is an accepted district (exact match).
func IsDistrict(name string) bool {
	_, ok := districtSet[name]
	return ok
}
